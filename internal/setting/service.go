package setting

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/setting/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/setting/repo"
)

// sentinel errors for common failure modes
var (
	ErrNotFound     = errors.New("setting not found")
	ErrInvalidValue = errors.New("setting value must be valid JSON")
)

// Service encapsulates business logic for settings and depends on a repo.
type Service struct {
	repo *repo.Repo
}

// NewService constructs a Service with the provided repository.
func NewService(r *repo.Repo) *Service {
	return &Service{repo: r}
}

// Get returns the setting stored under key.
func (s *Service) Get(ctx context.Context, key string) (*entity.Setting, error) {
	st, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

// Put validates and stores value under key, replacing any previous value.
func (s *Service) Put(ctx context.Context, key string, value json.RawMessage) error {
	if key == "" {
		return errors.New("key is required")
	}
	if !json.Valid(value) {
		return ErrInvalidValue
	}
	return s.repo.Upsert(ctx, key, value)
}

// GetValue returns only the JSON value stored under key.
func (s *Service) GetValue(ctx context.Context, key string) (json.RawMessage, error) {
	st, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return st.Value, nil
}

// PutValue stores value under key. Alias of Put for consumers that only
// care about the value payload.
func (s *Service) PutValue(ctx context.Context, key string, value json.RawMessage) error {
	return s.Put(ctx, key, value)
}

// Delete removes the setting stored under key.
func (s *Service) Delete(ctx context.Context, key string) error {
	rows, err := s.repo.Delete(ctx, key)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns settings with pagination. Limit is clamped to a sane range.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*entity.Setting, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
