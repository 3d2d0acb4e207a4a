package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/subscriber/entity"
)

// Repo provides data access for the subscribers table.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// EnsureTable creates the subscribers table if it does not already exist.
func (r *Repo) EnsureTable(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS subscribers (
		id varchar(32) PRIMARY KEY,
		email varchar(128) NOT NULL,
		phone varchar(16) NOT NULL DEFAULT '',
		source varchar(32) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_subscribers_email ON subscribers (email);
	`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Upsert inserts a subscriber, ignoring repeat signups for the same email.
func (r *Repo) Upsert(ctx context.Context, s *entity.Subscriber) error {
	const q = `INSERT INTO subscribers (id, email, phone, source, created_at)
		VALUES (:id, :email, :phone, :source, :created_at)
		ON CONFLICT (email) DO NOTHING`
	_, err := r.db.NamedExecContext(ctx, q, s)
	return err
}

// List returns subscribers newest first with pagination.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]*entity.Subscriber, error) {
	const q = `SELECT id, email, phone, source, created_at FROM subscribers
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows := []*entity.Subscriber{}
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}
