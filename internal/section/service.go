package section

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/setting"
)

// OrderSettingKey is the settings row holding the stored section ordering,
// persisted as a JSON array of OrderItem.
const OrderSettingKey = "homepage_section_order"

// ValidationError marks a rejected ordering payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SettingStore is the slice of the settings service the resolver needs.
type SettingStore interface {
	GetValue(ctx context.Context, key string) (json.RawMessage, error)
	PutValue(ctx context.Context, key string, value json.RawMessage) error
}

// Service resolves and updates the homepage section ordering on top of the
// generic settings store.
type Service struct {
	store SettingStore
	now   func() time.Time
}

func NewService(store SettingStore) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ResolvedItem is an OrderItem with its effective visibility computed.
type ResolvedItem struct {
	OrderItem
	Active bool `json:"active"`
}

// Resolved returns the complete merged ordering with per-item visibility.
// A missing settings row resolves to the defaults.
func (s *Service) Resolved(ctx context.Context) ([]ResolvedItem, error) {
	var stored []OrderItem
	raw, err := s.store.GetValue(ctx, OrderSettingKey)
	if err != nil {
		if !errors.Is(err, setting.ErrNotFound) {
			return nil, err
		}
	} else if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("stored section order is malformed: %w", err)
	}

	now := s.now()
	merged := Resolve(stored)
	out := make([]ResolvedItem, 0, len(merged))
	for _, it := range merged {
		out = append(out, ResolvedItem{OrderItem: it, Active: IsScheduledActive(it, now)})
	}
	return out, nil
}

// Visible returns only the sections that should render right now, in
// resolved order.
func (s *Service) Visible(ctx context.Context) ([]OrderItem, error) {
	resolved, err := s.Resolved(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderItem, 0, len(resolved))
	for _, it := range resolved {
		if it.Active {
			out = append(out, it.OrderItem)
		}
	}
	return out, nil
}

// Update validates and persists a new stored ordering. Unknown ids are
// rejected rather than silently dropped so admin typos surface immediately.
func (s *Service) Update(ctx context.Context, items []OrderItem) error {
	known := make(map[ID]bool)
	for _, d := range Defaults() {
		known[d.ID] = true
	}
	seen := make(map[ID]bool)
	for _, it := range items {
		if !known[it.ID] {
			return &ValidationError{Message: fmt.Sprintf("unknown section id %q", it.ID)}
		}
		if seen[it.ID] {
			return &ValidationError{Message: fmt.Sprintf("duplicate section id %q", it.ID)}
		}
		seen[it.ID] = true
		if it.StartDate != nil && it.EndDate != nil && it.EndDate.Before(*it.StartDate) {
			return &ValidationError{Message: fmt.Sprintf("section %q schedule ends before it starts", it.ID)}
		}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.store.PutValue(ctx, OrderSettingKey, raw)
}
