// Пакет sqlite - хранилище комментариев в SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/orbithall/widget/pkg/storage"
)

// schema создаёт таблицы хранилища, если их ещё нет.
// Времена хранятся как unix-секунды UTC.
const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	slug TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS comments (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id       INTEGER NOT NULL REFERENCES posts(id),
	parent_id     INTEGER REFERENCES comments(id),
	author_name   TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	content       TEXT NOT NULL,
	ip_address    TEXT NOT NULL DEFAULT '',
	is_deleted    INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	deleted_at    INTEGER
);
CREATE INDEX IF NOT EXISTS comments_post_idx ON comments(post_id);
`

// SQLite выполняет операции CRUD в БД.
type SQLite struct {
	// это поле экспортируемое, чтобы пользователь
	// мог установить такие важные параметры подключения как
	// SetConnMaxIdleTime, SetMaxOpenConns, SetMaxIdleConns...
	DB *sql.DB
}

// New производит подключение к [*SQLite] БД.
func New(connstr string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, err
	}

	return &SQLite{DB: db}, db.Ping()
}

// Init создаёт схему хранилища.
func (l *SQLite) Init(ctx context.Context) error {
	return l.exec(ctx, schema)
}

// Close closes db connection.
func (l *SQLite) Close() error {
	return l.DB.Close()
}

// Create сохраняет комментарий, заводя пост по слагу при
// первом обращении.
func (l *SQLite) Create(ctx context.Context, r *storage.Record) (int64, error) {
	tx, err := l.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO posts(slug) VALUES($1) ON CONFLICT(slug) DO NOTHING;`, r.PostSlug); err != nil {
		return 0, err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM posts WHERE slug = $1;`, r.PostSlug).Scan(&r.PostID)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO comments(post_id, parent_id, author_name, password_hash, content, ip_address, is_deleted, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, 0, $7, $8);`,
		r.PostID, r.ParentID, r.AuthorName, r.PasswordHash, r.Content,
		r.IPAddress, r.CreatedAt.Unix(), r.UpdatedAt.Unix())
	if err != nil {
		return 0, err
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	return r.ID, tx.Commit()
}

const selectComment = `
	SELECT
		c.id, c.post_id, p.slug, c.parent_id,
		c.author_name, c.password_hash, c.content,
		c.ip_address, c.is_deleted,
		c.created_at, c.updated_at, c.deleted_at
	FROM comments AS c JOIN posts AS p ON c.post_id = p.id`

// ByID возвращает комментарий по id.
func (l *SQLite) ByID(ctx context.Context, id int64) (storage.Record, error) {
	row := l.DB.QueryRowContext(ctx, selectComment+` WHERE c.id = $1;`, id)
	return scanRecord(row.Scan)
}

// Comments возвращает все комментарии поста по возрастанию
// времени создания.
func (l *SQLite) Comments(ctx context.Context, slug string) ([]storage.Record, error) {
	rows, err := l.DB.QueryContext(ctx,
		selectComment+` WHERE p.slug = $1 ORDER BY c.created_at, c.id;`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []storage.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}

	return recs, rows.Err()
}

// Update заменяет содержимое комментария.
func (l *SQLite) Update(ctx context.Context, id int64, content string, updatedAt time.Time) error {
	res, err := l.DB.ExecContext(ctx,
		`UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3;`,
		content, updatedAt.Unix(), id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// SoftDelete помечает комментарий удалённым.
func (l *SQLite) SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error {
	res, err := l.DB.ExecContext(ctx,
		`UPDATE comments SET is_deleted = 1, deleted_at = $1 WHERE id = $2;`,
		deletedAt.Unix(), id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// scanRecord читает строку комментария из Scan-функции строки
// или курсора.
func scanRecord(scan func(...any) error) (storage.Record, error) {
	var (
		r           storage.Record
		parentID    sql.NullInt64
		created     int64
		updated     int64
		deleted     sql.NullInt64
		deletedFlag int64
	)
	err := scan(&r.ID, &r.PostID, &r.PostSlug, &parentID,
		&r.AuthorName, &r.PasswordHash, &r.Content,
		&r.IPAddress, &deletedFlag, &created, &updated, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, storage.ErrNoRows
	}
	if err != nil {
		return storage.Record{}, err
	}

	if parentID.Valid {
		r.ParentID = &parentID.Int64
	}
	r.IsDeleted = deletedFlag != 0
	r.CreatedAt = time.Unix(created, 0).UTC()
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	if deleted.Valid {
		t := time.Unix(deleted.Int64, 0).UTC()
		r.DeletedAt = &t
	}
	return r, nil
}

// oneRow переводит отсутствие затронутых строк в ErrNoRows.
func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNoRows
	}
	return nil
}

// exec вспомогательная функция, выполняет
// выражение в транзакции.
func (l *SQLite) exec(ctx context.Context, stmt string, args ...any) error {
	tx, err := l.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, stmt, args...); err != nil {
		return err
	}

	return tx.Commit()
}
