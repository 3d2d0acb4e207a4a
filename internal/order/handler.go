package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Handler exposes checkout, guest lookup and admin order endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Checkout places a new order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	o, err := h.svc.Checkout(r.Context(), req)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
			return
		}
		h.logger.Warnw("checkout failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusCreated, o)
}

// GuestLookup verifies a guest's claim to an order and serves the sanitized
// view. Not-found and verification failures return generic, non-distinguishing
// messages.
func (h *Handler) GuestLookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	view, err := h.svc.GuestLookup(r.Context(), req)
	if err != nil {
		var ve *ValidationError
		var rl *RateLimitedError
		switch {
		case errors.As(err, &ve):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
		case errors.As(err, &rl):
			h.writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": rl.Message})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, ErrVerificationFailed):
			h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "verification failed"})
		default:
			h.logger.Warnw("guest lookup failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// List serves the admin order list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	status := r.URL.Query().Get("status")
	rows, err := h.svc.List(r.Context(), status, limit, offset)
	if err != nil {
		h.logger.Warnw("list orders failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// UpdateStatusRequest is the admin transition payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus applies an admin status transition to an order.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), number, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, ErrBadTransition):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrConflict):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "order changed concurrently"})
		default:
			h.logger.Warnw("update order status failed", "number", number, "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
