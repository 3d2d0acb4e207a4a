package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/pkg/utilities"
)

// Store is the slice of the product repository the service depends on.
type Store interface {
	ListActive(ctx context.Context, category string, limit, offset int) ([]*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) (int64, error)
	Archive(ctx context.Context, id string) (int64, error)
}

var (
	ErrNotFound = errors.New("product not found")
)

// ValidationError names the malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Service encapsulates catalog business logic.
type Service struct {
	repo Store
}

func NewService(r Store) *Service {
	return &Service{repo: r}
}

// List returns purchasable products with clamped pagination.
func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListActive(ctx, category, limit, offset)
}

// GetBySlug returns one product for the storefront detail page.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByIDs returns the products matching ids, keyed by id.
func (s *Service) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*entity.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// Create validates and inserts a new product.
func (s *Service) Create(ctx context.Context, in *entity.Product) (*entity.Product, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if in.PriceCents <= 0 {
		return nil, &ValidationError{Field: "price_cents", Message: "price must be positive"}
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	now := time.Now().UTC()
	in.ID = utilities.NewKSUID()
	if in.Status == "" {
		in.Status = entity.StatusActive
	}
	in.CreatedAt = now
	in.UpdatedAt = now
	if err := s.repo.Create(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// Update rewrites mutable fields of an existing product.
func (s *Service) Update(ctx context.Context, in *entity.Product) (*entity.Product, error) {
	if in.ID == "" {
		return nil, &ValidationError{Field: "id", Message: "id is required"}
	}
	if in.PriceCents <= 0 {
		return nil, &ValidationError{Field: "price_cents", Message: "price must be positive"}
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	in.UpdatedAt = time.Now().UTC()
	rows, err := s.repo.Update(ctx, in)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return in, nil
}

// Archive retires a product from the catalog. Existing orders keep their
// line-item snapshots so nothing breaks retroactively.
func (s *Service) Archive(ctx context.Context, id string) error {
	rows, err := s.repo.Archive(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a product title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = fmt.Sprintf("product-%s", strings.ToLower(utilities.NewKSUID()[:8]))
	}
	return s
}
