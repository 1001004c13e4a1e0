package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/orbithall/widget/pkg/storage"
)

var tdb *SQLite

func TestMain(m *testing.M) {

	var err error
	tdb, err = New("file:test.db?cache=shared&mode=memory&_fk=on")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := tdb.Init(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

var t0 = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func rec(slug, author, content string, at time.Time) storage.Record {
	return storage.Record{
		PostSlug:     slug,
		AuthorName:   author,
		PasswordHash: "$2a$12$fakehashfakehashfakehash",
		Content:      content,
		IPAddress:    "192.168.0.10",
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func TestSQLite(t *testing.T) {
	if tdb == nil {
		t.Skip("you must open connection to SQLite DB to run this test")
	}
	ctx := context.Background()

	got, err := tdb.Comments(ctx, "no-such-post")
	if err != nil || len(got) != 0 {
		t.Errorf("Comments() = %v, %v, want empty, nil", got, err)
	}

	if _, err := tdb.ByID(ctx, 404); !errors.Is(err, storage.ErrNoRows) {
		t.Errorf("ByID() = err %v, wantErr %v", err, storage.ErrNoRows)
	}

	want := []storage.Record{
		rec("first-post", "alice", "hello", t0),
		rec("first-post", "bob", "hi alice", t0.Add(time.Minute)),
		rec("other-post", "carol", "elsewhere", t0.Add(2*time.Minute)),
	}
	for i := range want {
		if _, err := tdb.Create(ctx, &want[i]); err != nil {
			t.Fatalf("Create() = err %v", err)
		}
	}

	// ответ привязывается к первому комментарию
	reply := rec("first-post", "dave", "me too", t0.Add(3*time.Minute))
	reply.ParentID = &want[0].ID
	if _, err := tdb.Create(ctx, &reply); err != nil {
		t.Fatalf("Create() = err %v", err)
	}
	want = append(want[:2:2], reply)

	got, err = tdb.Comments(ctx, "first-post")
	if err != nil {
		t.Fatalf("Comments() = err %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Comments() = %d records, want %d records", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("Comments() = %v, want %v", got[i], want[i])
		}
	}

	t.Run("update", func(t *testing.T) {
		at := t0.Add(10 * time.Minute)
		if err := tdb.Update(ctx, want[0].ID, "hello, edited", at); err != nil {
			t.Fatalf("Update() = err %v", err)
		}
		r, err := tdb.ByID(ctx, want[0].ID)
		if err != nil {
			t.Fatalf("ByID() = err %v", err)
		}
		if r.Content != "hello, edited" || !r.UpdatedAt.Equal(at) {
			t.Errorf("ByID() after update = %q, %v", r.Content, r.UpdatedAt)
		}
		if err := tdb.Update(ctx, 404, "x", at); !errors.Is(err, storage.ErrNoRows) {
			t.Errorf("Update() = err %v, wantErr %v", err, storage.ErrNoRows)
		}
	})

	t.Run("soft delete", func(t *testing.T) {
		at := t0.Add(20 * time.Minute)
		if err := tdb.SoftDelete(ctx, want[1].ID, at); err != nil {
			t.Fatalf("SoftDelete() = err %v", err)
		}
		r, err := tdb.ByID(ctx, want[1].ID)
		if err != nil {
			t.Fatalf("ByID() = err %v", err)
		}
		if !r.IsDeleted || r.DeletedAt == nil || !r.DeletedAt.Equal(at) {
			t.Errorf("ByID() after delete = %+v", r)
		}
		// строка и ответы остаются в выдаче поста
		got, err := tdb.Comments(ctx, "first-post")
		if err != nil || len(got) != 3 {
			t.Errorf("Comments() = %d records, %v, want 3, nil", len(got), err)
		}
		if err := tdb.SoftDelete(ctx, 404, at); !errors.Is(err, storage.ErrNoRows) {
			t.Errorf("SoftDelete() = err %v, wantErr %v", err, storage.ErrNoRows)
		}
	})
}
