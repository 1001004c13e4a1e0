// Пакет storage определяет контракт хранилища комментариев.
// Реализации: memdb (память), sqlite, postgres.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNoRows когда по запросу не найдены строки.
var ErrNoRows = errors.New("storage: no rows in result set")

// Record - строка комментария в хранилище. Пароль хранится только
// как bcrypt-хэш, исходный IP не покидает серверную часть.
type Record struct {
	ID           int64
	PostID       int64
	PostSlug     string
	ParentID     *int64
	AuthorName   string
	PasswordHash string
	Content      string
	IPAddress    string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Storage - операции хранилища комментариев.
type Storage interface {
	// Create сохраняет комментарий; пост заводится по слагу при
	// первом комментарии. Возвращает присвоенный id.
	Create(ctx context.Context, r *Record) (int64, error)

	// ByID возвращает комментарий по id или ErrNoRows.
	ByID(ctx context.Context, id int64) (Record, error)

	// Comments возвращает все комментарии поста по возрастанию
	// времени создания. Отсутствие поста не ошибка: пустой срез.
	Comments(ctx context.Context, slug string) ([]Record, error)

	// Update заменяет содержимое комментария и время правки.
	Update(ctx context.Context, id int64, content string, updatedAt time.Time) error

	// SoftDelete помечает комментарий удалённым, сохраняя строку
	// и ответы.
	SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error

	// Close закрывает соединение с БД.
	Close() error
}
