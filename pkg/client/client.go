// Пакет client - единственная точка обращения к сервису комментариев.
// Все исходящие тела переводятся в wire-формат (snake_case),
// все входящие - обратно в camelCase.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/orbithall/widget/domain"
	"github.com/orbithall/widget/pkg/wirecase"
)

// APIKeyHeader - заголовок аутентификации сервиса комментариев.
const APIKeyHeader = "X-Orbithall-API-Key"

// Error - ошибка сервиса комментариев. Payload заполнен, когда сервер
// вернул структурированное тело ошибки; nil означает, что тело
// разобрать не удалось.
type Error struct {
	Status  int
	Payload *domain.ErrorPayload
}

func (e *Error) Error() string {
	if e.Payload != nil && e.Payload.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Payload.Message)
	}
	if e.Payload != nil && e.Payload.Code != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Payload.Code)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Payload возвращает структурированное тело ошибки сервиса,
// если err его несёт, иначе nil.
func Payload(err error) *domain.ErrorPayload {
	var e *Error
	if errors.As(err, &e) {
		return e.Payload
	}
	return nil
}

// Client выполняет запросы к сервису комментариев.
// Кроме базового адреса и ключа API состояния не имеет.
type Client struct {
	apiURL string
	apiKey string
	httpc  *http.Client
}

// New возвращает [*Client].
func New(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		apiKey: apiKey,
		httpc:  http.DefaultClient,
	}
}

// Comments возвращает комментарии к посту. Вложенность ответов
// уже собрана сервером.
func (c *Client) Comments(ctx context.Context, slug string, page, limit int) ([]domain.Comment, error) {
	var resp struct {
		Comments []domain.Comment `json:"comments"`
	}
	path := fmt.Sprintf("/posts/%s/comments?page=%d&limit=%d", url.PathEscape(slug), page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// Create создаёт комментарий и возвращает созданную запись.
func (c *Client) Create(ctx context.Context, slug string, data domain.CommentSubmitData) (domain.Comment, error) {
	var created domain.Comment
	path := fmt.Sprintf("/posts/%s/comments", url.PathEscape(slug))
	err := c.do(ctx, http.MethodPost, path, data, &created)
	return created, err
}

// Update изменяет содержимое комментария по предъявлению пароля.
func (c *Client) Update(ctx context.Context, id int64, content, password string) (domain.Comment, error) {
	var updated domain.Comment
	body := struct {
		Content  string `json:"content"`
		Password string `json:"password"`
	}{Content: content, Password: password}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/comments/%d", id), body, &updated)
	return updated, err
}

// Delete удаляет комментарий (мягко, на стороне сервера).
// Успех - отсутствие ошибки.
func (c *Client) Delete(ctx context.Context, id int64, password string) error {
	body := struct {
		Password string `json:"password"`
	}{Password: password}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := toWireJSON(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.apiError(resp)
	}

	// "нет содержимого" - пустой результат без чтения тела
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	return fromWireJSON(resp.Body, out)
}

// apiError разбирает тело ошибки {"error":{code,message,details}}.
// Тело ошибки не проходит через преобразование регистра: ключи
// details остаются в wire-формате.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var envelope struct {
		Error *domain.ErrorPayload `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Payload = envelope.Error
	}
	return apiErr
}

// toWireJSON - значение -> json -> generic -> snake_case -> json.
func toWireJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(wirecase.ToWire(generic))
}

// fromWireJSON - json из r -> generic -> camelCase -> out.
func fromWireJSON(r io.Reader, out any) error {
	var generic any
	if err := json.NewDecoder(r).Decode(&generic); err != nil {
		return err
	}
	b, err := json.Marshal(wirecase.FromWire(generic))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
