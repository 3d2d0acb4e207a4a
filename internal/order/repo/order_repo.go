package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order/entity"
)

// Repo provides data access for orders and order_items using sqlx.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// EnsureTable creates the orders tables if not exists (idempotent).
func (r *Repo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS orders (
  id varchar(32) PRIMARY KEY,
  order_number TEXT UNIQUE NOT NULL,
  user_id varchar(32),
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  subtotal_cents BIGINT NOT NULL,
  shipping_cents BIGINT NOT NULL DEFAULT 0,
  total_cents BIGINT NOT NULL,
  customer_name TEXT NOT NULL DEFAULT '',
  shipping_address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  cancelled_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE TABLE IF NOT EXISTS order_items (
  id varchar(32) PRIMARY KEY,
  order_id varchar(32) NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id varchar(32) NOT NULL,
  title TEXT NOT NULL,
  unit_price_cents BIGINT NOT NULL,
  quantity INT NOT NULL,
  CHECK (quantity > 0)
);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const orderColumns = `id, order_number, user_id, status, payment_method,
	subtotal_cents, shipping_cents, total_cents, customer_name,
	shipping_address, city, notes, created_at, updated_at, cancelled_at`

// Create inserts an order and its items in a single transaction.
func (r *Repo) Create(ctx context.Context, o *entity.Order, items []entity.OrderItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const oq = `INSERT INTO orders (id, order_number, user_id, status, payment_method,
		subtotal_cents, shipping_cents, total_cents, customer_name, shipping_address,
		city, notes, created_at, updated_at)
		VALUES (:id, :order_number, :user_id, :status, :payment_method,
		:subtotal_cents, :shipping_cents, :total_cents, :customer_name, :shipping_address,
		:city, :notes, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, oq, o); err != nil {
		return err
	}

	const iq = `INSERT INTO order_items (id, order_id, product_id, title, unit_price_cents, quantity)
		VALUES (:id, :order_id, :product_id, :title, :unit_price_cents, :quantity)`
	for i := range items {
		if _, err := tx.NamedExecContext(ctx, iq, &items[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetGuestByNumber fetches a guest order (user_id IS NULL) by its public
// order number, matched case-insensitively. Returns sql.ErrNoRows both when
// no such order exists and when the order belongs to a registered account,
// so callers cannot distinguish the two.
func (r *Repo) GetGuestByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders
		WHERE order_number=$1 AND user_id IS NULL`
	var row entity.Order
	if err := r.db.GetContext(ctx, &row, q, strings.ToUpper(strings.TrimSpace(orderNumber))); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByNumber fetches any order by its public order number.
func (r *Repo) GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE order_number=$1`
	var row entity.Order
	if err := r.db.GetContext(ctx, &row, q, strings.ToUpper(strings.TrimSpace(orderNumber))); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetItems returns the line items of an order.
func (r *Repo) GetItems(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	const q = `SELECT id, order_id, product_id, title, unit_price_cents, quantity
		FROM order_items WHERE order_id=$1 ORDER BY id`
	items := []entity.OrderItem{}
	if err := r.db.SelectContext(ctx, &items, q, orderID); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus moves an order to status, guarded by the expected current
// status so concurrent admin actions cannot double-apply a transition.
// Reports rows affected.
func (r *Repo) UpdateStatus(ctx context.Context, id, from, to string) (int64, error) {
	const q = `UPDATE orders SET status=$1, updated_at=NOW(),
		cancelled_at = CASE WHEN $1='cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id=$2 AND status=$3`
	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns orders newest first with pagination, optionally filtered by
// status.
func (r *Repo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Order, error) {
	rows := []*entity.Order{}
	if status != "" {
		const q = `SELECT ` + orderColumns + ` FROM orders WHERE status=$1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		if err := r.db.SelectContext(ctx, &rows, q, status, limit, offset); err != nil {
			return nil, err
		}
		return rows, nil
	}
	const q = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}
