// Пакет wirecase преобразует ключи json-объектов между внутренним
// соглашением camelCase и wire-форматом snake_case.
package wirecase

import "strings"

// ToWire рекурсивно переводит ключи всех вложенных объектов
// в snake_case. Порядок массивов сохраняется, значения-листья
// (строки, числа, bool, nil) не изменяются.
//
// Коллизии ключей не отслеживаются: если два ключа после
// преобразования совпали, побеждает последний.
func ToWire(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[camelToSnake(k)] = ToWire(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = ToWire(t[i])
		}
		return out
	default:
		return v
	}
}

// FromWire - обратное преобразование, snake_case -> camelCase.
func FromWire(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[snakeToCamel(k)] = FromWire(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = FromWire(t[i])
		}
		return out
	default:
		return v
	}
}

// camelToSnake - "authorName" -> "author_name".
// Каждая заглавная буква заменяется на '_' и её строчный вариант.
func camelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// snakeToCamel - "author_name" -> "authorName".
// Поднимается только строчная латинская буква сразу после '_'.
func snakeToCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '_' && i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z' {
			b.WriteByte(s[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
