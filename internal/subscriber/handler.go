package subscriber

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/subscriber/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/pkg/utilities"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

// Store is the slice of the subscriber repository the handler depends on.
type Store interface {
	Upsert(ctx context.Context, s *entity.Subscriber) error
	List(ctx context.Context, limit, offset int) ([]*entity.Subscriber, error)
}

// Handler exposes the newsletter signup endpoint and the admin list.
type Handler struct {
	repo   Store
	logger *zap.SugaredLogger
}

func NewHandler(r Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{repo: r, logger: logger}
}

// SubscribeRequest is the public signup payload.
type SubscribeRequest struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}
	if req.Phone != "" && !order.ValidBDPhone(req.Phone) {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid phone number"})
		return
	}
	sub := &entity.Subscriber{
		ID:        utilities.NewKSUID(),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Source:    strings.TrimSpace(req.Source),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.Upsert(r.Context(), sub); err != nil {
		h.logger.Warnw("subscribe failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	// repeat signups get the same response as first-time ones
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	rows, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Warnw("list subscribers failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
