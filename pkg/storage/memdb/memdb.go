// Пакет memdb - хранилище комментариев в памяти.
// Используется в тестах и в демонстрационном запуске без БД.
package memdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orbithall/widget/pkg/storage"
)

// MemDB хранит комментарии в карте под мьютексом:
// обработчики сервера вызывают его конкурентно.
type MemDB struct {
	mu     sync.Mutex
	nextID int64
	posts  map[string]int64
	coms   map[int64]storage.Record
}

func New() *MemDB {
	return &MemDB{
		nextID: 1,
		posts:  map[string]int64{},
		coms:   map[int64]storage.Record{},
	}
}

func (m *MemDB) Create(_ context.Context, r *storage.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.posts[r.PostSlug]
	if !ok {
		id = int64(len(m.posts) + 1)
		m.posts[r.PostSlug] = id
	}
	r.PostID = id

	r.ID = m.nextID
	m.nextID++
	m.coms[r.ID] = *r
	return r.ID, nil
}

func (m *MemDB) ByID(_ context.Context, id int64) (storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.coms[id]
	if !ok {
		return storage.Record{}, storage.ErrNoRows
	}
	return r, nil
}

func (m *MemDB) Comments(_ context.Context, slug string) ([]storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []storage.Record
	for _, r := range m.coms {
		if r.PostSlug == slug {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemDB) Update(_ context.Context, id int64, content string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.coms[id]
	if !ok {
		return storage.ErrNoRows
	}
	r.Content = content
	r.UpdatedAt = updatedAt
	m.coms[id] = r
	return nil
}

func (m *MemDB) SoftDelete(_ context.Context, id int64, deletedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.coms[id]
	if !ok {
		return storage.ErrNoRows
	}
	r.IsDeleted = true
	r.DeletedAt = &deletedAt
	m.coms[id] = r
	return nil
}

func (m *MemDB) Close() error { return nil }
