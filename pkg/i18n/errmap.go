package i18n

import (
	"sort"
	"strings"

	"github.com/orbithall/widget/domain"
)

// ErrorMessage строит пользовательское сообщение из структурированной
// ошибки сервиса. Порядок правил:
//
//  1. известный код -> переведённая строка;
//  2. код валидации с details -> многострочное сообщение по полям;
//  3. сообщение сервера как есть;
//  4. общее "неизвестная ошибка".
//
// Транспортные ошибки без тела сюда не попадают: вызывающая сторона
// сама подставляет error.NETWORK_ERROR.
func ErrorMessage(p *domain.ErrorPayload, t *Translator) string {
	if p == nil {
		return t.T("error.UNKNOWN_ERROR")
	}

	if p.Code != "" {
		key := "error." + p.Code
		if msg := t.T(key); msg != key {
			return msg
		}
	}

	if p.Code == domain.CodeInvalidInput && len(p.Details) > 0 {
		fields := make([]string, 0, len(p.Details))
		for f := range p.Details {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		lines := make([]string, 0, len(fields))
		for _, f := range fields {
			lines = append(lines, f+": "+strings.Join(p.Details[f], ", "))
		}
		return t.T("error.INVALID_INPUT") + ":\n" + strings.Join(lines, "\n")
	}

	if p.Message != "" {
		return p.Message
	}

	return t.T("error.UNKNOWN_ERROR")
}
