package repo

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/setting/entity"
)

// Repo is the repository for settings backed by PostgreSQL.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a new Repo with an existing *sqlx.DB connection.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// EnsureTable creates the settings table if it does not already exist.
func (r *Repo) EnsureTable(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS settings (
		key varchar(64) PRIMARY KEY,
		value JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Get returns the setting row for key, or sql.ErrNoRows.
func (r *Repo) Get(ctx context.Context, key string) (*entity.Setting, error) {
	var row entity.Setting
	const q = `SELECT key, value, updated_at FROM settings WHERE key=$1`
	if err := r.db.GetContext(ctx, &row, q, key); err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes value under key, replacing any previous value.
func (r *Repo) Upsert(ctx context.Context, key string, value json.RawMessage) error {
	const q = `INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`
	_, err := r.db.ExecContext(ctx, q, key, []byte(value))
	return err
}

// Delete removes the setting row for key and reports rows affected.
func (r *Repo) Delete(ctx context.Context, key string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key=$1`, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns all settings ordered by key with pagination.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]*entity.Setting, error) {
	const q = `SELECT key, value, updated_at FROM settings ORDER BY key LIMIT $1 OFFSET $2`
	rows := []*entity.Setting{}
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}
