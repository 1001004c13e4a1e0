package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orbithall/widget/domain"
)

func TestClient(t *testing.T) {
	var gotPath, gotMethod, gotKey, gotContentType string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotMethod = r.Method
		gotKey = r.Header.Get(APIKeyHeader)
		gotContentType = r.Header.Get("Content-Type")
		gotBody = nil
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &gotBody)
		}

		switch {
		case r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"comments":[{"id":1,"post_id":7,"parent_id":null,
				"author_name":"alice","content":"hi","is_deleted":false,
				"created_at":"2025-03-01T12:00:00Z","updated_at":"2025-03-01T12:00:00Z",
				"replies":[{"id":2,"post_id":7,"parent_id":1,"author_name":"bob","content":"yo",
				"is_deleted":false,"created_at":"2025-03-01T12:05:00Z","updated_at":"2025-03-01T12:05:00Z"}]}]}`))
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":3,"post_id":7,"author_name":"carol","content":"new",
				"is_deleted":false,"created_at":"2025-03-01T13:00:00Z","updated_at":"2025-03-01T13:00:00Z"}`))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer ts.Close()

	c := New(ts.URL+"/", "secret-key")

	t.Run("comments", func(t *testing.T) {
		coms, err := c.Comments(context.Background(), "my-post", 1, 50)
		if err != nil {
			t.Fatalf("Comments() = err %v", err)
		}
		if gotPath != "/posts/my-post/comments?page=1&limit=50" {
			t.Errorf("Comments() path = %q", gotPath)
		}
		if gotKey != "secret-key" || gotContentType != "application/json" {
			t.Errorf("Comments() headers = %q, %q", gotKey, gotContentType)
		}
		if len(coms) != 1 {
			t.Fatalf("Comments() = %d records, want %d", len(coms), 1)
		}
		if coms[0].AuthorName != "alice" || coms[0].PostID != 7 {
			t.Errorf("Comments() = %+v, want wire keys converted", coms[0])
		}
		if coms[0].ParentID != nil {
			t.Errorf("Comments() top-level ParentID = %v, want nil", coms[0].ParentID)
		}
		if len(coms[0].Replies) != 1 || coms[0].Replies[0].ParentID == nil || *coms[0].Replies[0].ParentID != 1 {
			t.Errorf("Comments() replies = %+v", coms[0].Replies)
		}
	})

	t.Run("create_sends_wire_keys", func(t *testing.T) {
		parent := int64(1)
		created, err := c.Create(context.Background(), "my-post", domain.CommentSubmitData{
			AuthorName: "carol",
			Password:   "pw1234",
			Content:    "new",
			ParentID:   &parent,
		})
		if err != nil {
			t.Fatalf("Create() = err %v", err)
		}
		if gotMethod != http.MethodPost {
			t.Errorf("Create() method = %q", gotMethod)
		}
		if _, ok := gotBody["author_name"]; !ok {
			t.Errorf("Create() body = %v, want snake_case keys", gotBody)
		}
		if _, ok := gotBody["authorName"]; ok {
			t.Errorf("Create() body = %v, camelCase key leaked", gotBody)
		}
		if gotBody["parent_id"] != float64(1) {
			t.Errorf("Create() parent_id = %v, want 1", gotBody["parent_id"])
		}
		if created.ID != 3 {
			t.Errorf("Create() id = %d, want %d", created.ID, 3)
		}
	})

	t.Run("delete_no_content", func(t *testing.T) {
		if err := c.Delete(context.Background(), 3, "pw1234"); err != nil {
			t.Fatalf("Delete() = err %v", err)
		}
		if gotBody["password"] != "pw1234" {
			t.Errorf("Delete() body = %v", gotBody)
		}
	})
}

func TestClient_errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/plain" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("not json"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"WRONG_PASSWORD","message":"Wrong password",
			"details":{"password":["mismatch"]}}}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "k")

	t.Run("structured_payload", func(t *testing.T) {
		_, err := c.Update(context.Background(), 1, "text", "bad")
		if err == nil {
			t.Fatal("Update() = nil err, want error")
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("Update() err = %T, want *Error", err)
		}
		if apiErr.Status != http.StatusForbidden {
			t.Errorf("Update() status = %d, want %d", apiErr.Status, http.StatusForbidden)
		}
		if apiErr.Payload == nil || apiErr.Payload.Code != domain.CodeWrongPassword {
			t.Fatalf("Update() payload = %+v, want code %s", apiErr.Payload, domain.CodeWrongPassword)
		}
		if got := apiErr.Payload.Details["password"]; len(got) != 1 || got[0] != "mismatch" {
			t.Errorf("Update() details = %v", apiErr.Payload.Details)
		}
	})

	t.Run("unparsable_body", func(t *testing.T) {
		err := c.do(context.Background(), http.MethodGet, "/plain", nil, nil)
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("do() err = %T, want *Error", err)
		}
		if apiErr.Payload != nil {
			t.Errorf("do() payload = %+v, want nil", apiErr.Payload)
		}
	})

	t.Run("transport_failure_is_not_api_error", func(t *testing.T) {
		broken := New("http://127.0.0.1:0", "k")
		_, err := broken.Comments(context.Background(), "s", 1, 50)
		if err == nil {
			t.Fatal("Comments() = nil err, want transport error")
		}
		var apiErr *Error
		if errors.As(err, &apiErr) {
			t.Errorf("Comments() err = *Error, want plain transport error")
		}
	})
}
