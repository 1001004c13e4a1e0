package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/orbithall/widget/pkg/storage"
)

var tdb *Postgres // тестовая БД

const dbEnv = "TEST_DB_URL"

func TestMain(m *testing.M) {
	_ = godotenv.Load(".env") // загружаем переменные окружения из файла
	connstr, ok := os.LookupEnv(dbEnv)
	if !ok {
		os.Exit(m.Run()) // тест будет пропущен
	}

	var err error
	tdb, err = New(connstr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := restoreTestDB(tdb); err != nil {
		tdb.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	defer tdb.Close()

	os.Exit(m.Run())
}

func restoreTestDB(tdb *Postgres) error {
	ctx := context.Background()
	if err := tdb.exec(ctx, `DROP TABLE IF EXISTS comments; DROP TABLE IF EXISTS posts;`); err != nil {
		return err
	}
	return tdb.Init(ctx)
}

var t0 = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func rec(slug, author, content string, at time.Time) storage.Record {
	return storage.Record{
		PostSlug:     slug,
		AuthorName:   author,
		PasswordHash: "$2a$12$fakehashfakehashfakehash",
		Content:      content,
		IPAddress:    "10.0.0.7",
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func TestPostgres(t *testing.T) {
	if _, ok := os.LookupEnv(dbEnv); !ok {
		t.Skipf("environment variable %s not set, skipping tests", dbEnv)
	}
	ctx := context.Background()

	if _, err := tdb.ByID(ctx, 404); !errors.Is(err, storage.ErrNoRows) {
		t.Errorf("ByID() = err %v, wantErr %v", err, storage.ErrNoRows)
	}

	want := []storage.Record{
		rec("first-post", "alice", "hello", t0),
		rec("first-post", "bob", "hi alice", t0.Add(time.Minute)),
	}
	for i := range want {
		if _, err := tdb.Create(ctx, &want[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	reply := rec("first-post", "carol", "me too", t0.Add(2*time.Minute))
	reply.ParentID = &want[0].ID
	if _, err := tdb.Create(ctx, &reply); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	want = append(want, reply)

	got, err := tdb.Comments(ctx, "first-post")
	if err != nil {
		t.Fatalf("Comments() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Comments() got records = %d, want = %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Fatalf("Comments() got = %v, want = %v", got[i], want[i])
		}
	}

	t.Run("Update()", func(t *testing.T) {
		at := t0.Add(10 * time.Minute)
		if err := tdb.Update(ctx, want[0].ID, "hello, edited", at); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		r, err := tdb.ByID(ctx, want[0].ID)
		if err != nil {
			t.Fatalf("ByID() error = %v", err)
		}
		if r.Content != "hello, edited" || !r.UpdatedAt.Equal(at) {
			t.Fatalf("ByID() got = %q, %v", r.Content, r.UpdatedAt)
		}
	})

	t.Run("SoftDelete()", func(t *testing.T) {
		at := t0.Add(20 * time.Minute)
		if err := tdb.SoftDelete(ctx, want[1].ID, at); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}
		r, err := tdb.ByID(ctx, want[1].ID)
		if err != nil {
			t.Fatalf("ByID() error = %v", err)
		}
		if !r.IsDeleted || r.DeletedAt == nil || !r.DeletedAt.Equal(at) {
			t.Fatalf("ByID() got = %+v", r)
		}
		if err := tdb.SoftDelete(ctx, 404, at); !errors.Is(err, storage.ErrNoRows) {
			t.Fatalf("SoftDelete() = err %v, wantErr %v", err, storage.ErrNoRows)
		}
	})
}
