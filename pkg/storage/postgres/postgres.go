// Пакет postgres - хранилище комментариев в PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/orbithall/widget/pkg/storage"
)

// schema создаёт таблицы хранилища, если их ещё нет.
const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id   BIGSERIAL PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS comments (
	id            BIGSERIAL PRIMARY KEY,
	post_id       BIGINT NOT NULL REFERENCES posts(id),
	parent_id     BIGINT REFERENCES comments(id),
	author_name   TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	content       TEXT NOT NULL,
	ip_address    TEXT NOT NULL DEFAULT '',
	is_deleted    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	deleted_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS comments_post_idx ON comments(post_id);
`

// Postgres выполняет CRUD операции с БД.
type Postgres struct {
	db *pgxpool.Pool
}

// New выполняет подключение
// и возвращает объект для взаимодействия с БД.
func New(connString string) (*Postgres, error) {

	pool, err := pgxpool.Connect(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	return &Postgres{db: pool}, pool.Ping(context.Background())
}

// Init создаёт схему хранилища.
func (p *Postgres) Init(ctx context.Context) error {
	return p.exec(ctx, schema)
}

// Close выполняет закрытие подключения к БД.
func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

// Create сохраняет комментарий, заводя пост по слагу при
// первом обращении.
func (p *Postgres) Create(ctx context.Context, r *storage.Record) (int64, error) {

	err := p.db.BeginFunc(ctx, func(tx pgx.Tx) error {

		err := tx.QueryRow(ctx, `
			INSERT INTO posts(slug) VALUES ($1)
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id;`, r.PostSlug).Scan(&r.PostID)
		if err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			INSERT INTO comments(post_id, parent_id, author_name, password_hash, content, ip_address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id;`,
			r.PostID, r.ParentID, r.AuthorName, r.PasswordHash,
			r.Content, r.IPAddress, r.CreatedAt, r.UpdatedAt).Scan(&r.ID)
	})
	if err != nil {
		return 0, err
	}

	return r.ID, nil
}

const selectComment = `
	SELECT
		c.id, c.post_id, p.slug, c.parent_id,
		c.author_name, c.password_hash, c.content,
		c.ip_address, c.is_deleted,
		c.created_at, c.updated_at, c.deleted_at
	FROM comments AS c JOIN posts AS p ON c.post_id = p.id`

// ByID возвращает комментарий по id.
func (p *Postgres) ByID(ctx context.Context, id int64) (storage.Record, error) {
	row := p.db.QueryRow(ctx, selectComment+` WHERE c.id = $1;`, id)

	r, err := scanRecord(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Record{}, storage.ErrNoRows
	}
	return r, err
}

// Comments возвращает все комментарии поста по возрастанию
// времени создания.
func (p *Postgres) Comments(ctx context.Context, slug string) ([]storage.Record, error) {
	rows, err := p.db.Query(ctx,
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
func (p *Postgres) Update(ctx context.Context, id int64, content string, updatedAt time.Time) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3;`,
		content, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNoRows
	}
	return nil
}

// SoftDelete помечает комментарий удалённым.
func (p *Postgres) SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE comments SET is_deleted = TRUE, deleted_at = $1 WHERE id = $2;`,
		deletedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNoRows
	}
	return nil
}

func scanRecord(scan func(...any) error) (storage.Record, error) {
	var (
		r       storage.Record
		created time.Time
		updated time.Time
	)
	err := scan(&r.ID, &r.PostID, &r.PostSlug, &r.ParentID,
		&r.AuthorName, &r.PasswordHash, &r.Content,
		&r.IPAddress, &r.IsDeleted, &created, &updated, &r.DeletedAt)
	if err != nil {
		return storage.Record{}, err
	}
	r.CreatedAt = created.UTC()
	r.UpdatedAt = updated.UTC()
	if r.DeletedAt != nil {
		t := r.DeletedAt.UTC()
		r.DeletedAt = &t
	}
	return r, nil
}

// exec вспомогательная функция, выполняет
// *pgx.conn.Exec() в транзакции.
func (p *Postgres) exec(ctx context.Context, sql string, args ...any) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = p.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
