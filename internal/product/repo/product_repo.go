package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product/entity"
)

// Repo provides data access for the products table using sqlx.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// EnsureTable creates the products table if not exists (idempotent).
func (r *Repo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS products (
  id varchar(32) PRIMARY KEY,
  slug TEXT UNIQUE NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price_cents BIGINT NOT NULL,
  compare_at_cents BIGINT,
  image_url TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'active',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  archived_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const productColumns = `id, slug, title, description, category, price_cents,
	compare_at_cents, image_url, status, created_at, updated_at, archived_at`

// Create inserts a new product row.
func (r *Repo) Create(ctx context.Context, p *entity.Product) error {
	const q = `INSERT INTO products (id, slug, title, description, category, price_cents, compare_at_cents, image_url, status, created_at, updated_at)
		VALUES (:id, :slug, :title, :description, :category, :price_cents, :compare_at_cents, :image_url, :status, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, q, p)
	return err
}

// GetByID fetches a product by primary key or sql.ErrNoRows.
func (r *Repo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var row entity.Product
	if err := r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetBySlug fetches a product by slug or sql.ErrNoRows.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var row entity.Product
	if err := r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE slug=$1`, slug); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListActive returns purchasable products, newest first, with optional
// category filter and pagination.
func (r *Repo) ListActive(ctx context.Context, category string, limit, offset int) ([]*entity.Product, error) {
	rows := []*entity.Product{}
	if category != "" {
		const q = `SELECT ` + productColumns + ` FROM products
			WHERE status <> 'archived' AND category=$1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		if err := r.db.SelectContext(ctx, &rows, q, category, limit, offset); err != nil {
			return nil, err
		}
		return rows, nil
	}
	const q = `SELECT ` + productColumns + ` FROM products
		WHERE status <> 'archived'
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByIDs fetches products matching the given ids. Missing ids are simply
// absent from the result.
func (r *Repo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	q = r.db.Rebind(q)
	rows := []*entity.Product{}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update rewrites mutable product fields and reports rows affected.
func (r *Repo) Update(ctx context.Context, p *entity.Product) (int64, error) {
	const q = `UPDATE products SET slug=:slug, title=:title, description=:description,
		category=:category, price_cents=:price_cents, compare_at_cents=:compare_at_cents,
		image_url=:image_url, status=:status, updated_at=:updated_at
		WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Archive marks a product archived and reports rows affected.
func (r *Repo) Archive(ctx context.Context, id string) (int64, error) {
	const q = `UPDATE products SET status='archived', archived_at=NOW(), updated_at=NOW() WHERE id=$1 AND status <> 'archived'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
