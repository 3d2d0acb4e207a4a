package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/payment/entity"
)

// Handler exposes the manual payment submission endpoint, the admin review
// queue and the payment processor callback.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	sub, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
		case errors.Is(err, ErrDuplicateTrx):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "transaction already submitted"})
		default:
			h.logger.Warnw("payment submission failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	rows, err := h.svc.ListPending(r.Context(), limit, offset)
	if err != nil {
		h.logger.Warnw("list pending payments failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Verify)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Reject)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (*entity.Submission, error)) {
	id := r.PathValue("id")
	sub, err := apply(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "submission not found"})
		case errors.Is(err, ErrAlreadyReviewed):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "submission already reviewed"})
		default:
			h.logger.Warnw("payment review failed", "id", id, "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

// StripeWebhook applies the status result of a completed checkout session.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	var ev StripeEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.ApplyStripeEvent(r.Context(), ev); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
			return
		}
		h.logger.Warnw("stripe event failed", "type", ev.Type, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
