// Пакет render отрисовывает дерево комментариев в узлы документа
// и ведёт машину состояний каждого узла: просмотр, ответ,
// редактирование и подтверждение удаления.
package render

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/orbithall/widget/domain"
	"github.com/orbithall/widget/pkg/client"
	"github.com/orbithall/widget/pkg/dom"
	"github.com/orbithall/widget/pkg/i18n"
)

// параметры первой страницы выдачи
const (
	defaultPage  = 1
	defaultLimit = 50
)

// API - операции сервиса комментариев, нужные виджету.
// Реализуется [*client.Client].
type API interface {
	Comments(ctx context.Context, slug string, page, limit int) ([]domain.Comment, error)
	Create(ctx context.Context, slug string, data domain.CommentSubmitData) (domain.Comment, error)
	Update(ctx context.Context, id int64, content, password string) (domain.Comment, error)
	Delete(ctx context.Context, id int64, password string) error
}

// Widget - виджет комментариев, привязанный к одному контейнеру
// и одному слагу поста.
type Widget struct {
	// Now - источник времени для окна редактирования и
	// относительных дат. По умолчанию [time.Now].
	Now func() time.Time

	doc       *dom.Document
	container *dom.Node
	api       API
	tr        *i18n.Translator
	slug      string

	comments []domain.Comment
	loading  bool
	loadErr  string

	// состояние главной формы; переживает перерисовки
	mainAuthor, mainPassword, mainContent string
	mainBusy                              bool
	mainErr                               string

	states map[int64]*nodeState
}

// nodeState - состояние одного отрисованного комментария.
// Состояния соседних узлов независимы.
type nodeState struct {
	replying      bool
	editing       bool
	confirmDelete bool
	busy          bool
	err           string

	replyAuthor, replyPassword, replyContent string
	editContent, editPassword                string
	deletePassword                           string
}

// New возвращает [*Widget]. Отрисовка начинается вызовом Mount.
func New(doc *dom.Document, container *dom.Node, api API, tr *i18n.Translator, slug string) *Widget {
	return &Widget{
		Now:       time.Now,
		doc:       doc,
		container: container,
		api:       api,
		tr:        tr,
		slug:      slug,
		states:    map[int64]*nodeState{},
	}
}

// Mount отрисовывает индикатор загрузки, выполняет первый запрос
// списка и отрисовывает результат.
func (w *Widget) Mount() {
	w.loading = true
	w.render()
	w.Refresh()
}

// Refresh перечитывает комментарии с сервера и полностью замещает
// локальное состояние: побеждает последний ответ, локальных
// оптимистичных правок нет.
func (w *Widget) Refresh() {
	coms, err := w.api.Comments(context.Background(), w.slug, defaultPage, defaultLimit)
	w.loading = false
	if err != nil {
		w.loadErr = w.errText(err, "")
	} else {
		w.comments = coms
		w.loadErr = ""
		w.states = map[int64]*nodeState{}
	}
	w.render()
}

// errText переводит ошибку операции в строку для пользователя:
// структурированное тело - через таблицу кодов, остальное - в
// фолбэк (или в сетевую ошибку, если фолбэк не задан).
func (w *Widget) errText(err error, fallbackKey string) string {
	if p := client.Payload(err); p != nil {
		return i18n.ErrorMessage(p, w.tr)
	}
	if fallbackKey != "" {
		return w.tr.T(fallbackKey)
	}
	return w.tr.T("error.NETWORK_ERROR")
}

func (w *Widget) state(id int64) *nodeState {
	st, ok := w.states[id]
	if !ok {
		st = &nodeState{}
		w.states[id] = st
	}
	return st
}

// render полностью перестраивает поддерево контейнера из текущего
// состояния. Окно редактирования пересчитывается на каждом проходе.
func (w *Widget) render() {
	w.container.RemoveAll()

	root := w.el("div", "orb-widget")

	header := w.el("div", "orb-header")
	header.Append(w.text("h3", "", w.tr.T("comments.title")))
	root.Append(header)

	root.Append(w.form(formOpts{
		author:   w.mainAuthor,
		password: w.mainPassword,
		content:  w.mainContent,
		busy:     w.mainBusy,
		errText:  w.mainErr,
		submit:   w.submitMain,
	}))

	switch {
	case w.loading:
		root.Append(w.text("div", "orb-loading", w.tr.T("loading")))
	case w.loadErr != "":
		root.Append(w.text("div", "orb-error", w.loadErr))
	default:
		tops := domain.TopLevel(w.comments)
		if len(tops) == 0 {
			root.Append(w.text("div", "orb-empty", w.tr.T("empty")))
		} else {
			list := w.el("div", "orb-comment-list")
			for i := range tops {
				list.Append(w.renderComment(&tops[i]))
			}
			root.Append(list)
		}
	}

	w.container.Append(root)
}

func (w *Widget) renderComment(c *domain.Comment) *dom.Node {
	node := w.el("div", "orb-comment")
	node.SetAttr("data-comment-id", strconv.FormatInt(c.ID, 10))

	// мягко удалённый комментарий: заглушка вместо содержимого и
	// действий, ответы отрисовываются как обычно
	if c.IsDeleted {
		node.SetAttr("class", "orb-comment orb-comment-deleted")
		node.Append(w.text("div", "orb-comment-content", w.tr.T("comment.deleted")))
		if len(c.Replies) > 0 {
			replies := w.el("div", "orb-replies")
			for i := range c.Replies {
				replies.Append(w.renderComment(&c.Replies[i]))
			}
			node.Append(replies)
		}
		return node
	}

	st := w.state(c.ID)

	if st.err != "" {
		node.Append(w.errorOverlay(st))
	}

	editable := c.Editable(w.Now())

	header := w.el("div", "orb-comment-header")
	meta := w.el("div", "")
	meta.Append(w.text("span", "orb-comment-author", c.AuthorName))
	date := w.text("span", "orb-comment-date", w.formatTime(c.CreatedAt))
	if c.Edited() {
		date.Append(w.text("span", "orb-comment-edited",
			" ("+w.formatTime(c.UpdatedAt)+" "+w.tr.T("time.edited")+")"))
	}
	meta.Append(date)
	header.Append(meta)
	if editable {
		header.Append(w.deleteActions(c, st))
	}
	node.Append(header)

	if st.editing {
		node.Append(w.form(formOpts{
			editMode: true,
			content:  st.editContent,
			password: st.editPassword,
			busy:     st.busy,
			cancel: func() {
				st.editing = false
				st.err = ""
				w.render()
			},
			submit: func(_, password, content string) {
				w.submitEdit(c, st, content, password)
			},
		}))
	} else {
		node.Append(w.text("div", "orb-comment-content", c.Content))

		actions := w.el("div", "orb-comment-actions")
		// отвечать можно только на корневой комментарий
		if c.ParentID == nil {
			label := w.tr.T("comment.reply")
			if st.replying {
				label = w.tr.T("form.cancel")
			}
			actions.Append(w.button(label, "orb-button-primary", func() {
				st.replying = !st.replying
				w.render()
			}))
		}
		if editable {
			actions.Append(w.button(w.tr.T("comment.edit"), "orb-button-secondary", func() {
				st.editing = true
				st.editContent = c.Content
				st.editPassword = ""
				st.confirmDelete = false
				st.deletePassword = ""
				st.err = ""
				w.render()
			}))
		}
		node.Append(actions)
	}

	if st.replying || len(c.Replies) > 0 {
		replies := w.el("div", "orb-replies")
		if st.replying {
			rf := w.el("div", "orb-reply-form")
			rf.Append(w.form(formOpts{
				parentID: &c.ID,
				author:   st.replyAuthor,
				password: st.replyPassword,
				content:  st.replyContent,
				busy:     st.busy,
				cancel: func() {
					st.replying = false
					w.render()
				},
				submit: func(author, password, content string) {
					w.submitReply(c, st, author, password, content)
				},
			}))
			replies.Append(rf)
		}
		for i := range c.Replies {
			replies.Append(w.renderComment(&c.Replies[i]))
		}
		node.Append(replies)
	}

	return node
}

// deleteActions - кнопка удаления с раскрывающимся полем пароля.
// Первый клик открывает поле, второй выполняет удаление.
func (w *Widget) deleteActions(c *domain.Comment, st *nodeState) *dom.Node {
	wrap := w.el("div", "orb-delete-actions")

	var pw *dom.Node
	if st.confirmDelete {
		pw = w.el("input", "orb-input orb-delete-password-input")
		pw.SetAttr("type", "password")
		pw.SetAttr("placeholder", w.tr.T("delete.placeholder.password"))
		pw.Value = st.deletePassword
		pw.Disabled = st.busy

		cancel := w.button(w.tr.T("delete.cancel"), "orb-button-cancel", func() {
			st.confirmDelete = false
			st.deletePassword = ""
			w.render()
		})
		cancel.Disabled = st.busy
		wrap.Append(pw, cancel)
	}

	label := w.tr.T("comment.delete")
	if st.busy {
		label = w.tr.T("comment.deleting")
	}
	del := w.button(label, "orb-button-danger", func() {
		if !st.confirmDelete {
			st.confirmDelete = true
			st.err = ""
			w.render()
			return
		}
		password := pw.Value
		if password == "" {
			st.err = w.tr.T("delete.error.required")
			w.render()
			return
		}
		st.deletePassword = password
		st.busy = true
		w.render()

		err := w.api.Delete(context.Background(), c.ID, password)
		st.busy = false
		if err != nil {
			st.err = w.errText(err, "delete.error.failed")
			w.render()
			return
		}
		w.Refresh()
	})
	del.Disabled = st.busy
	wrap.Append(del)

	return wrap
}

func (w *Widget) submitMain(author, password, content string) {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if author == "" || content == "" || password == "" {
		w.mainErr = w.tr.T("error.INVALID_INPUT")
		w.render()
		return
	}

	w.mainAuthor, w.mainPassword, w.mainContent = author, password, content
	w.mainErr = ""
	w.mainBusy = true
	w.render()

	_, err := w.api.Create(context.Background(), w.slug, domain.CommentSubmitData{
		AuthorName: author,
		Password:   password,
		Content:    content,
	})
	w.mainBusy = false
	if err != nil {
		w.mainErr = w.errText(err, "form.error")
		w.render()
		return
	}

	w.mainAuthor, w.mainPassword, w.mainContent = "", "", ""
	w.Refresh()
}

func (w *Widget) submitReply(c *domain.Comment, st *nodeState, author, password, content string) {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if author == "" || content == "" || password == "" {
		st.err = w.tr.T("error.INVALID_INPUT")
		w.render()
		return
	}

	st.replyAuthor, st.replyPassword, st.replyContent = author, password, content
	st.busy = true
	w.render()

	_, err := w.api.Create(context.Background(), w.slug, domain.CommentSubmitData{
		AuthorName: author,
		Password:   password,
		Content:    content,
		ParentID:   &c.ID,
	})
	st.busy = false
	if err != nil {
		st.err = w.errText(err, "form.error")
		w.render()
		return
	}

	st.replying = false
	w.Refresh()
}

func (w *Widget) submitEdit(c *domain.Comment, st *nodeState, content, password string) {
	if strings.TrimSpace(content) == "" || password == "" {
		st.err = w.tr.T("error.INVALID_INPUT")
		w.render()
		return
	}

	st.editContent, st.editPassword = content, password
	st.busy = true
	w.render()

	_, err := w.api.Update(context.Background(), c.ID, content, password)
	st.busy = false
	if err != nil {
		st.err = w.errText(err, "edit.error.failed")
		w.render()
		return
	}

	st.editing = false
	st.err = ""
	w.Refresh()
}

// formatTime - относительное время с переходом на календарную дату
// после недели.
func (w *Widget) formatTime(ts time.Time) string {
	diff := w.Now().Sub(ts)

	switch {
	case diff < time.Minute:
		return w.tr.T("time.justNow")
	case diff < time.Hour:
		m := strconv.Itoa(int(diff / time.Minute))
		return strings.ReplaceAll(w.tr.T("time.minutesAgo"), "{minutes}", m)
	case diff < 24*time.Hour:
		h := strconv.Itoa(int(diff / time.Hour))
		return strings.ReplaceAll(w.tr.T("time.hoursAgo"), "{hours}", h)
	case diff < 7*24*time.Hour:
		d := strconv.Itoa(int(diff / (24 * time.Hour)))
		return strings.ReplaceAll(w.tr.T("time.daysAgo"), "{days}", d)
	default:
		return ts.Format("2006-01-02")
	}
}
