package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	strip "github.com/grokify/html-strip-tags-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/orbithall/widget/domain"
	"github.com/orbithall/widget/pkg/storage"
)

// bcryptCost - стоимость хэширования паролей комментариев.
const bcryptCost = 12

// параметры пагинации списка
const (
	defaultLimit = 50
	maxLimit     = 100
)

func (api *API) handleCommentCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		slug := mux.Vars(r)["slug"]

		var in createInput
		if err := readJSON(r.Body, &in); err != nil {
			api.writeError(w, http.StatusBadRequest,
				domain.CodeInvalidInput, "Invalid request body", nil)
			return
		}
		if details := in.validate(); len(details) > 0 {
			api.writeError(w, http.StatusBadRequest,
				domain.CodeInvalidInput, "Validation failed", details)
			return
		}

		// защита от XSS: разметка вычищается до записи
		in.AuthorName = strip.StripTags(in.AuthorName)
		in.Content = strip.StripTags(in.Content)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if in.ParentID != nil {
			parent, err := api.db.ByID(ctx, *in.ParentID)
			if errors.Is(err, storage.ErrNoRows) || (err == nil && (parent.PostSlug != slug || parent.IsDeleted)) {
				api.writeError(w, http.StatusNotFound,
					domain.CodeCommentNotFound, "Parent comment not found", nil)
				return
			}
			if err != nil {
				api.writeError(w, http.StatusInternalServerError,
					domain.CodeInternalServer, ErrInternal.Error(), nil)
				return
			}
			// допускается один уровень вложенности
			if parent.ParentID != nil {
				api.writeError(w, http.StatusBadRequest,
					domain.CodeInvalidInput, "Nested replies are not allowed (max depth is 1)", nil)
				return
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			api.writeError(w, http.StatusInternalServerError,
				domain.CodeInternalServer, ErrInternal.Error(), nil)
			return
		}

		now := api.now().UTC().Truncate(time.Second)
		rec := storage.Record{
			PostSlug:     slug,
			ParentID:     in.ParentID,
			AuthorName:   in.AuthorName,
			PasswordHash: string(hash),
			Content:      in.Content,
			IPAddress:    ipAddr(r),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := api.db.Create(ctx, &rec); err != nil {
			api.writeError(w, http.StatusInternalServerError,
				domain.CodeInternalServer, ErrInternal.Error(), nil)
			return
		}

		api.writeJSON(w, toComment(rec), http.StatusCreated)
	}
}

func (api *API) handleCommentList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		slug := mux.Vars(r)["slug"]

		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", defaultLimit)
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > maxLimit {
			limit = defaultLimit
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		recs, err := api.db.Comments(ctx, slug)
		if err != nil {
			api.writeError(w, http.StatusInternalServerError,
				domain.CodeInternalServer, ErrInternal.Error(), nil)
			return
		}

		coms := make([]domain.Comment, len(recs))
		for i := range recs {
			coms[i] = toComment(recs[i])
		}

		tree := domain.ToTree(coms)
		total := len(tree) // корневые, включая удалённые
		tree = filterDeleted(tree)

		// пагинация по корневым комментариям
		offset := (page - 1) * limit
		if offset > len(tree) {
			offset = len(tree)
		}
		end := offset + limit
		if end > len(tree) {
			end = len(tree)
		}
		pageComs := tree[offset:end]
		if pageComs == nil {
			pageComs = []domain.Comment{}
		}

		api.writeJSON(w, map[string]any{
			"comments": pageComs,
			"pagination": map[string]any{
				"currentPage":   page,
				"totalPages":    (total + limit - 1) / limit,
				"totalComments": total,
				"perPage":       limit,
			},
		}, http.StatusOK)
	}
}

func (api *API) handleCommentUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var in updateInput
		if err := readJSON(r.Body, &in); err != nil {
			api.writeError(w, http.StatusBadRequest,
				domain.CodeInvalidInput, "Invalid request body", nil)
			return
		}
		if details := in.validate(); len(details) > 0 {
			api.writeError(w, http.StatusBadRequest,
				domain.CodeInvalidInput, "Validation failed", details)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, ok := api.authorizedComment(ctx, w, r, in.Password)
		if !ok {
			return
		}

		now := api.now().UTC().Truncate(time.Second)
		content := strip.StripTags(in.Content)
		if err := api.db.Update(ctx, rec.ID, content, now); err != nil {
			api.writeError(w, http.StatusInternalServerError,
				domain.CodeInternalServer, ErrInternal.Error(), nil)
			return
		}

		rec.Content = content
		rec.UpdatedAt = now
		api.writeJSON(w, toComment(rec), http.StatusOK)
	}
}

func (api *API) handleCommentDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var in deleteInput
		if err := readJSON(r.Body, &in); err != nil {
			api.writeError(w, http.StatusBadRequest,
				domain.CodeInvalidInput, "Invalid request body", nil)
			return
		}
		if details := in.validate(); len(details) > 0 {
			api.writeError(w, http.StatusBadRequest,
				domain.CodeInvalidInput, "Validation failed", details)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, ok := api.authorizedComment(ctx, w, r, in.Password)
		if !ok {
			return
		}

		if err := api.db.SoftDelete(ctx, rec.ID, api.now().UTC().Truncate(time.Second)); err != nil {
			api.writeError(w, http.StatusInternalServerError,
				domain.CodeInternalServer, ErrInternal.Error(), nil)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// authorizedComment находит комментарий из {id} и проверяет права на
// изменение: пароль и окно редактирования. Сервер проверяет окно
// сам, не доверяя клиентскому расчёту. При отказе ответ уже записан.
func (api *API) authorizedComment(ctx context.Context, w http.ResponseWriter, r *http.Request, password string) (storage.Record, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		api.writeError(w, http.StatusBadRequest,
			domain.CodeInvalidInput, "Invalid comment id", nil)
		return storage.Record{}, false
	}

	rec, err := api.db.ByID(ctx, id)
	if errors.Is(err, storage.ErrNoRows) || (err == nil && rec.IsDeleted) {
		api.writeError(w, http.StatusNotFound,
			domain.CodeCommentNotFound, "Comment not found", nil)
		return storage.Record{}, false
	}
	if err != nil {
		api.writeError(w, http.StatusInternalServerError,
			domain.CodeInternalServer, ErrInternal.Error(), nil)
		return storage.Record{}, false
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		api.writeError(w, http.StatusForbidden,
			domain.CodeWrongPassword, "Wrong password", nil)
		return storage.Record{}, false
	}

	// граница окна включительная, как и на клиенте
	if api.now().Sub(rec.CreatedAt) > domain.EditWindow {
		api.writeError(w, http.StatusForbidden,
			domain.CodeEditTimeExpired, "Comments can only be edited or deleted within 30 minutes", nil)
		return storage.Record{}, false
	}

	return rec, true
}

// toComment - запись хранилища в модель ответа: без хэша пароля,
// IP только в маскированном виде.
func toComment(r storage.Record) domain.Comment {
	return domain.Comment{
		ID:              r.ID,
		PostID:          r.PostID,
		ParentID:        r.ParentID,
		AuthorName:      r.AuthorName,
		Content:         r.Content,
		IsDeleted:       r.IsDeleted,
		IPAddressMasked: domain.MaskIP(r.IPAddress),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		DeletedAt:       r.DeletedAt,
	}
}

// filterDeleted применяет правила мягкого удаления к дереву:
// удалённый корневой без ответов выбрасывается, удалённый с ответами
// остаётся с пустыми автором и содержимым. У удалённых ответов
// содержимое тоже вычищается, но сами они остаются как заглушки.
func filterDeleted(tree []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, 0, len(tree))
	for i := range tree {
		c := tree[i]
		if c.IsDeleted {
			if len(c.Replies) == 0 {
				continue
			}
			c.AuthorName = ""
			c.Content = ""
		}
		for j := range c.Replies {
			if c.Replies[j].IsDeleted {
				c.Replies[j].AuthorName = ""
				c.Replies[j].Content = ""
			}
		}
		out = append(out, c)
	}
	return out
}

func queryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
