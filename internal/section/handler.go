package section

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the public homepage sections feed and admin ordering
// endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Visible returns the sections the storefront should render right now.
func (h *Handler) Visible(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Visible(r.Context())
	if err != nil {
		h.logger.Warnw("resolve visible sections failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Resolved returns the full merged ordering with per-item visibility, for
// the admin section editor.
func (h *Handler) Resolved(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Resolved(r.Context())
	if err != nil {
		h.logger.Warnw("resolve sections failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Update replaces the stored ordering.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var items []OrderItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.Update(r.Context(), items); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message})
			return
		}
		h.logger.Warnw("update section order failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
