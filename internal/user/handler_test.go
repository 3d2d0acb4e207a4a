package user

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/ratelimit"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user/entity"
)

// brokenUsers fails every write while reporting reads as empty.
type brokenUsers struct{}

func (brokenUsers) Create(context.Context, *entity.User) error {
	return errors.New(`pq: connection refused host "db.internal:5432"`)
}
func (brokenUsers) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, sql.ErrNoRows
}
func (brokenUsers) GetByID(context.Context, string) (*entity.User, error) {
	return nil, sql.ErrNoRows
}
func (brokenUsers) TouchLogin(context.Context, string) error { return nil }

func signup(t *testing.T, h *Handler, req SignupRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw)))
	return rec
}

func TestSignupStatusCodes(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := signup(t, h, SignupRequest{Email: "a@b.co", Name: "A", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = signup(t, h, SignupRequest{Email: "a@b.co", Name: "A", Password: "longenough"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = signup(t, h, SignupRequest{Email: "a@b.co", Name: "A", Password: "longenough"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupStoreFailureIsGeneric(t *testing.T) {
	sessions := &memSessions{rows: map[string]*entity.RefreshSession{}}
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.DefaultConfig())
	cfg := AuthConfig{Secret: []byte("test-secret"), AccessTTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour}
	svc := NewService(brokenUsers{}, sessions, limiter, cfg).WithHasher(plainHasher{})
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := signup(t, h, SignupRequest{Email: "a@b.co", Name: "A", Password: "longenough"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unexpected error", body["error"])
	assert.NotContains(t, rec.Body.String(), "pq:", "internal error text must not leak")
}
