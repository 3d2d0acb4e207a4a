package product

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product/entity"
)

type memCatalogStore struct {
	rows map[string]*entity.Product
	// failWith, when set, is returned by every write
	failWith error
}

func (m *memCatalogStore) ListActive(_ context.Context, category string, limit, offset int) ([]*entity.Product, error) {
	out := []*entity.Product{}
	for _, p := range m.rows {
		if p.Status != entity.StatusArchived {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memCatalogStore) GetBySlug(_ context.Context, slug string) (*entity.Product, error) {
	for _, p := range m.rows {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memCatalogStore) ListByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	out := []*entity.Product{}
	for _, id := range ids {
		if p, ok := m.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memCatalogStore) Create(_ context.Context, p *entity.Product) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memCatalogStore) Update(_ context.Context, p *entity.Product) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	if _, ok := m.rows[p.ID]; !ok {
		return 0, nil
	}
	cp := *p
	m.rows[p.ID] = &cp
	return 1, nil
}

func (m *memCatalogStore) Archive(_ context.Context, id string) (int64, error) {
	p, ok := m.rows[id]
	if !ok || p.Status == entity.StatusArchived {
		return 0, nil
	}
	p.Status = entity.StatusArchived
	return 1, nil
}

func sendJSON(t *testing.T, h http.HandlerFunc, method string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, "/", bytes.NewReader(raw)))
	return rec
}

func TestCreateValidation(t *testing.T) {
	store := &memCatalogStore{rows: map[string]*entity.Product{}}
	h := NewHandler(NewService(store), zap.NewNop().Sugar())

	rec := sendJSON(t, h.Create, http.MethodPost, entity.Product{Title: " ", PriceCents: 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "title", body["field"])

	rec = sendJSON(t, h.Create, http.MethodPost, entity.Product{Title: "Oversized Tee"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "price_cents", body["field"])

	rec = sendJSON(t, h.Create, http.MethodPost, entity.Product{Title: "Oversized Tee", PriceCents: 59900})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "oversized-tee", created.Slug)
	assert.Equal(t, entity.StatusActive, created.Status)
}

func TestCreateStoreFailureIsGeneric(t *testing.T) {
	store := &memCatalogStore{
		rows:     map[string]*entity.Product{},
		failWith: errors.New(`pq: connection refused host "db.internal:5432"`),
	}
	h := NewHandler(NewService(store), zap.NewNop().Sugar())

	rec := sendJSON(t, h.Create, http.MethodPost, entity.Product{Title: "Tee", PriceCents: 100})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unexpected error", body["error"])
	assert.NotContains(t, rec.Body.String(), "pq:", "internal error text must not leak")
}

func TestUpdateMissingProduct(t *testing.T) {
	store := &memCatalogStore{rows: map[string]*entity.Product{}}
	h := NewHandler(NewService(store), zap.NewNop().Sugar())

	raw, err := json.Marshal(entity.Product{Title: "Tee", PriceCents: 100})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/ghost", bytes.NewReader(raw))
	req.SetPathValue("id", "ghost")
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
