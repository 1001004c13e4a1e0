// Пакет api предоставляет маршрутизатор REST API сервиса комментариев.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/orbithall/widget/domain"
	"github.com/orbithall/widget/pkg/client"
	"github.com/orbithall/widget/pkg/storage"
	"github.com/orbithall/widget/pkg/wirecase"
)

var ErrInternal = errors.New("internal server error")

type ctxKey int

const (
	requestID ctxKey = iota
)

type wideResponseWriter struct {
	http.ResponseWriter
	length, status int
	internalErr    error
}

func (w *wideResponseWriter) WriteHeader(status int) {
	w.ResponseWriter.WriteHeader(status)
	w.status = status
}

func (w *wideResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.length += n
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return n, err
}

// REST API.
type API struct {
	router *mux.Router
	db     storage.Storage
	logger *zap.Logger
	keys   map[string]struct{}

	// источник времени для окна редактирования; в тестах подменяется
	now func() time.Time
}

// New возвращает [*API]. keys - допустимые значения заголовка
// X-Orbithall-API-Key.
func New(db storage.Storage, keys []string, logger *zap.Logger) *API {
	api := API{
		router: mux.NewRouter(),
		db:     db,
		logger: logger,
		keys:   map[string]struct{}{},
		now:    time.Now,
	}
	for _, k := range keys {
		api.keys[k] = struct{}{}
	}
	api.endpoints()
	return &api
}

// ServeHTTP - таким образом, мы можем использовать
// сам [*API] в качестве мультиплексора на сервере.
func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

func (api *API) endpoints() {
	api.router.Use(
		api.requestIDMiddleware,
		api.wideEventLogMiddleware,
		api.closerMiddleware,
		api.headersMiddleware,
		api.authMiddleware,
	)
	api.router.HandleFunc("/posts/{slug}/comments", api.handleCommentCreate()).Methods(http.MethodPost, http.MethodOptions)
	api.router.HandleFunc("/posts/{slug}/comments", api.handleCommentList()).Methods(http.MethodGet, http.MethodOptions)
	api.router.HandleFunc("/comments/{id}", api.handleCommentUpdate()).Methods(http.MethodPut, http.MethodOptions)
	api.router.HandleFunc("/comments/{id}", api.handleCommentDelete()).Methods(http.MethodDelete, http.MethodOptions)
}

// closerMiddleware считывает и закрывает тело запроса
// для повторного использования TCP-соединения.
func (api *API) closerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		_, _ = io.Copy(io.Discard, r.Body)
		_ = r.Body.Close()
	})
}

// requestIDMiddleware извлекает id запроса из параметров запроса.
// В случае если id запроса отсутствует, id генерируется.
// Далее id добавляется в контекст запроса.
func (api *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.URL.Query().Get("request-id")
		if rid == "" {
			rid = randStr(6)
		}
		ctxWithID := context.WithValue(r.Context(), requestID, rid)
		next.ServeHTTP(w, r.WithContext(ctxWithID))
	})
}

// wideEventLogMiddleware собирает и регистрирует информацию о полученном запросе.
func (api *API) wideEventLogMiddleware(next http.Handler) http.Handler {

	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {

			wideWriter := &wideResponseWriter{ResponseWriter: w}

			next.ServeHTTP(wideWriter, r)

			addr, _, _ := net.SplitHostPort(r.RemoteAddr)
			api.logger.Info("request received",
				zap.Any("request_id", r.Context().Value(requestID)),
				zap.Int("status_code", wideWriter.status),
				zap.Int("response_length", wideWriter.length),
				zap.Int64("content_length", r.ContentLength),
				zap.String("method", r.Method),
				zap.String("proto", r.Proto),
				zap.String("remote_addr", addr),
				zap.String("uri", r.RequestURI),
				zap.String("user_agent", r.UserAgent()),
				zap.Error(wideWriter.internalErr),
			)
		},
	)
}

// headersMiddleware задает обычные заголовки для всех ответов.
func (api *API) headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json;charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// authMiddleware проверяет ключ API в заголовке запроса.
func (api *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(client.APIKeyHeader)
		if key == "" {
			api.writeError(w, http.StatusUnauthorized,
				domain.CodeMissingAPIKey, "API key is required", nil)
			return
		}
		if _, ok := api.keys[key]; !ok {
			api.writeError(w, http.StatusUnauthorized,
				domain.CodeInvalidAPIKey, "Invalid API key", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError пишет конверт ошибки {"error": {code, message, details}}.
// Ключи конверта не подлежат wire-преобразованию.
func (api *API) writeError(w http.ResponseWriter, status int, code, message string, details map[string][]string) {
	if wrw, ok := w.(*wideResponseWriter); ok {
		wrw.internalErr = fmt.Errorf("%s: %s", code, message)
	}
	w.WriteHeader(status)
	resp := map[string]any{
		"error": domain.ErrorPayload{Code: code, Message: message, Details: details},
	}
	_ = json.NewEncoder(w).Encode(&resp)
}

// writeJSON пишет данные в wire-формате (ключи snake_case).
func (api *API) writeJSON(w http.ResponseWriter, data any, code int) {
	b, err := json.Marshal(data)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError,
			domain.CodeInternalServer, ErrInternal.Error(), nil)
		return
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		api.writeError(w, http.StatusInternalServerError,
			domain.CodeInternalServer, ErrInternal.Error(), nil)
		return
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(wirecase.ToWire(generic))
}

// readJSON разбирает тело запроса из wire-формата в out.
func readJSON(r io.Reader, out any) error {
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

// ipAddr возвращает адрес клиента с учётом прокси.
func ipAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// randStr возвращает строку из n символов, случайные буквы
// чередуются с цифрами.
func randStr(n int) string {
	var (
		letters = []rune("abcdefghijklmnopqrstuvwxyz")
		nums    = []rune("0123456789")
	)
	s := make([]rune, n)
	for i := range s {
		if i%2 == 0 {
			s[i] = letters[rand.Intn(len(letters))]
		} else {
			s[i] = nums[rand.Intn(len(nums))]
		}
	}
	return string(s)
}
