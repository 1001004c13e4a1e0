package api

import "strings"

// Ограничения полей комментария.
const (
	maxAuthorLen   = 100
	minPasswordLen = 4
	maxPasswordLen = 50
	maxContentLen  = 10000
)

// createInput - тело запроса создания комментария. Ключи в запросе
// приходят в wire-формате и уже преобразованы readJSON.
type createInput struct {
	AuthorName string `json:"authorName"`
	Password   string `json:"password"`
	Content    string `json:"content"`
	ParentID   *int64 `json:"parentId"`
}

// validate возвращает сообщения по полям; пустая карта - вход годен.
// Ключи карты в wire-формате, как их ожидает клиент.
func (in *createInput) validate() map[string][]string {
	details := map[string][]string{}

	author := strings.TrimSpace(in.AuthorName)
	if author == "" {
		details["author_name"] = append(details["author_name"], "Author name is required")
	} else if len(author) > maxAuthorLen {
		details["author_name"] = append(details["author_name"], "Author name must be 100 characters or less")
	}

	if len(in.Password) < minPasswordLen {
		details["password"] = append(details["password"], "Password must be at least 4 characters")
	} else if len(in.Password) > maxPasswordLen {
		details["password"] = append(details["password"], "Password must be 50 characters or less")
	}

	if strings.TrimSpace(in.Content) == "" {
		details["content"] = append(details["content"], "Content is required")
	} else if len(in.Content) > maxContentLen {
		details["content"] = append(details["content"], "Content must be 10000 characters or less")
	}

	if in.ParentID != nil && *in.ParentID <= 0 {
		details["parent_id"] = append(details["parent_id"], "Parent ID must be a positive integer")
	}

	return details
}

type updateInput struct {
	Password string `json:"password"`
	Content  string `json:"content"`
}

func (in *updateInput) validate() map[string][]string {
	details := map[string][]string{}

	if in.Password == "" {
		details["password"] = append(details["password"], "Password is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		details["content"] = append(details["content"], "Content is required")
	} else if len(in.Content) > maxContentLen {
		details["content"] = append(details["content"], "Content must be 10000 characters or less")
	}

	return details
}

type deleteInput struct {
	Password string `json:"password"`
}

func (in *deleteInput) validate() map[string][]string {
	details := map[string][]string{}

	if in.Password == "" {
		details["password"] = append(details["password"], "Password is required")
	}

	return details
}
