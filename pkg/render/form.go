package render

import "github.com/orbithall/widget/pkg/dom"

// formOpts описывает одну форму: главную, ответа или редактирования.
type formOpts struct {
	editMode bool
	parentID *int64

	author, password, content string
	busy                      bool
	errText                   string

	cancel func()
	submit func(author, password, content string)
}

// form строит форму по описанию. Значения полей читаются из узлов
// в момент отправки, так что ввод переживает перерисовку только
// через состояние, переданное в opts.
func (w *Widget) form(opts formOpts) *dom.Node {
	class := "orb-comment-form"
	if opts.editMode {
		class = "orb-edit-form"
	}
	f := w.el("form", class)

	var author *dom.Node
	if !opts.editMode {
		author = w.el("input", "orb-input")
		author.SetAttr("type", "text")
		author.SetAttr("placeholder", w.tr.T("form.name"))
		author.Value = opts.author
		author.Disabled = opts.busy
		f.Append(author)
	}

	content := w.el("textarea", "orb-textarea")
	if opts.editMode {
		content.SetAttr("placeholder", w.tr.T("edit.placeholder.content"))
	} else {
		content.SetAttr("placeholder", w.tr.T("form.content"))
	}
	content.Value = opts.content
	content.Disabled = opts.busy
	f.Append(content)

	actions := w.el("div", "orb-form-actions")

	password := w.el("input", "orb-input orb-form-password")
	password.SetAttr("type", "password")
	password.SetAttr("placeholder", w.tr.T("form.password"))
	password.Value = opts.password
	password.Disabled = opts.busy
	actions.Append(password)

	if opts.cancel != nil {
		label := w.tr.T("form.cancel")
		if opts.editMode {
			label = w.tr.T("edit.cancel")
		}
		cb := w.button(label, "orb-button-cancel", opts.cancel)
		cb.Disabled = opts.busy
		actions.Append(cb)
	}

	handler := func() {
		a := ""
		if author != nil {
			a = author.Value
		}
		opts.submit(a, password.Value, content.Value)
	}

	var label string
	switch {
	case opts.busy && opts.editMode:
		label = w.tr.T("comment.editing")
	case opts.busy:
		label = w.tr.T("form.submitting")
	case opts.editMode:
		label = w.tr.T("edit.submit")
	case opts.parentID != nil:
		label = w.tr.T("form.reply")
	default:
		label = w.tr.T("form.submit")
	}
	sb := w.button(label, "orb-button-primary", handler)
	sb.SetAttr("type", "submit")
	sb.Disabled = opts.busy
	actions.Append(sb)

	f.Append(actions)

	if opts.errText != "" {
		f.Append(w.text("div", "orb-form-error", opts.errText))
	}

	f.OnSubmit = handler
	f.Disabled = opts.busy
	return f
}

// errorOverlay - закрываемое сообщение об ошибке поверх комментария.
func (w *Widget) errorOverlay(st *nodeState) *dom.Node {
	dismiss := func() {
		st.err = ""
		w.render()
	}

	ov := w.el("div", "orb-error-overlay")

	backdrop := w.el("div", "orb-error-backdrop")
	backdrop.OnClick = dismiss
	ov.Append(backdrop)

	container := w.el("div", "orb-error-container")
	container.Append(w.text("div", "orb-error-content", st.err))
	close := w.button(w.tr.T("error.close"), "orb-error-close", dismiss)
	container.Append(close)
	ov.Append(container)

	return ov
}

func (w *Widget) el(tag, class string) *dom.Node {
	n := w.doc.NewNode(tag)
	if class != "" {
		n.SetAttr("class", class)
	}
	return n
}

func (w *Widget) text(tag, class, text string) *dom.Node {
	n := w.el(tag, class)
	n.Text = text
	return n
}

func (w *Widget) button(label, class string, onClick func()) *dom.Node {
	b := w.el("button", "orb-button "+class)
	b.Text = label
	b.OnClick = onClick
	return b
}
