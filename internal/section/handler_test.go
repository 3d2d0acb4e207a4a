package section

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenSettings struct{}

func (brokenSettings) GetValue(context.Context, string) (json.RawMessage, error) {
	return nil, errors.New(`pq: connection refused host "db.internal:5432"`)
}

func (brokenSettings) PutValue(context.Context, string, json.RawMessage) error {
	return errors.New(`pq: connection refused host "db.internal:5432"`)
}

func putOrder(t *testing.T, h *Handler, items []OrderItem) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(raw)))
	return rec
}

func TestUpdateRejectsInvalidOrdering(t *testing.T) {
	h := NewHandler(NewService(&fakeSettings{}), zap.NewNop().Sugar())

	rec := putOrder(t, h, []OrderItem{{ID: "flashSale", Enabled: true}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "unknown section id")
}

func TestUpdateStoreFailureIsGeneric(t *testing.T) {
	h := NewHandler(NewService(brokenSettings{}), zap.NewNop().Sugar())

	rec := putOrder(t, h, []OrderItem{{ID: Hero, Enabled: true}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unexpected error", body["error"])
	assert.NotContains(t, rec.Body.String(), "pq:", "internal error text must not leak")
}
