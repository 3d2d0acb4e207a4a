package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user/entity"
)

// SessionRepo persists opaque refresh tokens.
type SessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// EnsureTable creates the refresh_sessions table if not exists (idempotent).
func (r *SessionRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS refresh_sessions (
  token TEXT PRIMARY KEY,
  user_id varchar(32) NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refresh_sessions_user ON refresh_sessions(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *SessionRepo) Save(ctx context.Context, token, userID string, expiresAt time.Time) error {
	const q = `INSERT INTO refresh_sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, token, userID, expiresAt)
	return err
}

func (r *SessionRepo) Get(ctx context.Context, token string) (*entity.RefreshSession, error) {
	var row entity.RefreshSession
	const q = `SELECT token, user_id, expires_at FROM refresh_sessions WHERE token=$1`
	if err := r.db.GetContext(ctx, &row, q, token); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE token=$1`, token)
	return err
}
