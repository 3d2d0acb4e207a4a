package subscriber

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/subscriber/entity"
)

type memStore struct {
	byEmail map[string]*entity.Subscriber
}

func (m *memStore) Upsert(_ context.Context, s *entity.Subscriber) error {
	if _, ok := m.byEmail[s.Email]; ok {
		return nil
	}
	cp := *s
	m.byEmail[s.Email] = &cp
	return nil
}

func (m *memStore) List(_ context.Context, limit, offset int) ([]*entity.Subscriber, error) {
	out := []*entity.Subscriber{}
	for _, s := range m.byEmail {
		out = append(out, s)
	}
	return out, nil
}

func subscribe(t *testing.T, h *Handler, req SubscribeRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.Subscribe(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw)))
	return rec
}

func TestSubscribeValidatesInput(t *testing.T) {
	store := &memStore{byEmail: map[string]*entity.Subscriber{}}
	h := NewHandler(store, zap.NewNop().Sugar())

	rec := subscribe(t, h, SubscribeRequest{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = subscribe(t, h, SubscribeRequest{Email: "a@b.co", Phone: "12345"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.byEmail, "nothing stored on rejection")

	rec = subscribe(t, h, SubscribeRequest{Email: "A@B.co", Phone: "017-1234-5678"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, store.byEmail, "a@b.co", "email is normalized")
}

func TestSubscribeRepeatSignupIndistinguishable(t *testing.T) {
	store := &memStore{byEmail: map[string]*entity.Subscriber{}}
	h := NewHandler(store, zap.NewNop().Sugar())

	first := subscribe(t, h, SubscribeRequest{Email: "a@b.co"})
	second := subscribe(t, h, SubscribeRequest{Email: "a@b.co"})
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Len(t, store.byEmail, 1)
}
