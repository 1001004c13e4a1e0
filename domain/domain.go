// Пакет domain содержит модели данных виджета комментариев.
package domain

import (
	"strings"
	"time"
)

// EditWindow - период после создания комментария, в течение которого
// автор может изменить или удалить его (по предъявлению пароля).
// Граница включительная.
const EditWindow = 30 * time.Minute

// Коды ошибок, которые возвращает сервис комментариев.
const (
	CodeMissingAPIKey     = "MISSING_API_KEY"
	CodeInvalidAPIKey     = "INVALID_API_KEY"
	CodeSiteInactive      = "SITE_INACTIVE"
	CodeInvalidOrigin     = "INVALID_ORIGIN"
	CodeInvalidInput      = "INVALID_INPUT"
	CodePostNotFound      = "POST_NOT_FOUND"
	CodeCommentNotFound   = "COMMENT_NOT_FOUND"
	CodeWrongPassword     = "WRONG_PASSWORD"
	CodeEditTimeExpired   = "EDIT_TIME_EXPIRED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeInternalServer    = "INTERNAL_SERVER_ERROR"
)

// Comment - модель данных комментария к посту.
// Ответы уже вложены сервером, клиент дерево не собирает.
type Comment struct {
	ID              int64      `json:"id"`
	PostID          int64      `json:"postId"`
	ParentID        *int64     `json:"parentId,omitempty"`
	AuthorName      string     `json:"authorName"`
	Content         string     `json:"content"`
	IsDeleted       bool       `json:"isDeleted"`
	IPAddressMasked string     `json:"ipAddressMasked,omitempty"`
	Replies         []Comment  `json:"replies,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

// Editable сообщает, попадает ли комментарий в окно редактирования
// на момент времени now. Удалённый комментарий не редактируется.
func (c *Comment) Editable(now time.Time) bool {
	if c.IsDeleted {
		return false
	}
	return now.Sub(c.CreatedAt) <= EditWindow
}

// Edited сообщает, правился ли комментарий после создания.
func (c *Comment) Edited() bool {
	return !c.UpdatedAt.Equal(c.CreatedAt)
}

// CommentSubmitData - данные формы для создания комментария.
// Живут только на время запроса.
type CommentSubmitData struct {
	AuthorName string `json:"authorName"`
	Password   string `json:"password"`
	Content    string `json:"content"`
	ParentID   *int64 `json:"parentId,omitempty"`
}

// ErrorPayload - структурированное тело ошибки сервиса.
// Details - сообщения валидации по полям (ключи в wire-формате).
type ErrorPayload struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// TopLevel возвращает только корневые комментарии (без ParentID).
func TopLevel(comments []Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for i := range comments {
		if comments[i].ParentID == nil {
			out = append(out, comments[i])
		}
	}
	return out
}

// ToTree - возвращает дерево комментариев из плоского списка.
func ToTree(comments []Comment) []Comment {

	var m = make(map[int64][]*Comment, len(comments))
	var tops int

	for i := range comments {
		if comments[i].ParentID == nil {
			tops++
			continue
		}
		m[*comments[i].ParentID] = append(m[*comments[i].ParentID], &comments[i])
	}

	var out = make([]Comment, 0, tops)

	for i := range comments {
		if comments[i].ParentID != nil {
			continue
		}
		c := comments[i]
		for _, v := range m[c.ID] {
			c.Replies = append(c.Replies, *dig(v, m))
		}
		out = append(out, c)
	}

	return out
}

func dig(c *Comment, m map[int64][]*Comment) *Comment {
	if len(m[c.ID]) == 0 {
		return c
	}

	for _, v := range m[c.ID] {
		c.Replies = append(c.Replies, *dig(v, m))
	}

	return c
}

// MaskIP частично маскирует ip-адрес, например "192.168.1.10" -> "192.168.***.***".
// Для адресов не в формате IPv4 маскируется всё после первой группы.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}
	if parts := strings.Split(ip, "."); len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".***.***"
	}
	if i := strings.Index(ip, ":"); i > 0 {
		return ip[:i] + ":****"
	}
	return "***"
}
