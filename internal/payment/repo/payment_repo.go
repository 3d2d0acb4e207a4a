package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/payment/entity"
)

// Repo provides data access for payment_submissions using sqlx.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// EnsureTable creates the payment_submissions table if not exists (idempotent).
func (r *Repo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS payment_submissions (
  id varchar(32) PRIMARY KEY,
  order_number TEXT NOT NULL,
  method TEXT NOT NULL,
  sender_number TEXT NOT NULL,
  trx_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  reviewed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_payment_submissions_order ON payment_submissions(order_number);
CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_submissions_trx ON payment_submissions(method, trx_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const columns = `id, order_number, method, sender_number, trx_id, status, created_at, reviewed_at`

// Create inserts a new submission.
func (r *Repo) Create(ctx context.Context, s *entity.Submission) error {
	const q = `INSERT INTO payment_submissions (id, order_number, method, sender_number, trx_id, status, created_at)
		VALUES (:id, :order_number, :method, :sender_number, :trx_id, :status, :created_at)`
	_, err := r.db.NamedExecContext(ctx, q, s)
	return err
}

// GetByID fetches a submission or sql.ErrNoRows.
func (r *Repo) GetByID(ctx context.Context, id string) (*entity.Submission, error) {
	var row entity.Submission
	if err := r.db.GetContext(ctx, &row, `SELECT `+columns+` FROM payment_submissions WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByStatus returns submissions for the admin review queue.
func (r *Repo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.Submission, error) {
	const q = `SELECT ` + columns + ` FROM payment_submissions WHERE status=$1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows := []*entity.Submission{}
	if err := r.db.SelectContext(ctx, &rows, q, status, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetStatus marks a pending submission reviewed. Reports rows affected so
// a double review is a no-op surfaced to the caller.
func (r *Repo) SetStatus(ctx context.Context, id, status string) (int64, error) {
	const q = `UPDATE payment_submissions SET status=$1, reviewed_at=NOW() WHERE id=$2 AND status='pending'`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
