package setting

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Handler exposes admin CRUD endpoints for settings.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	rows, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Warnw("list settings failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	st, err := h.svc.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "setting not found"})
			return
		}
		h.logger.Warnw("get setting failed", "key", key, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.Put(r.Context(), key, body); err != nil {
		if errors.Is(err, ErrInvalidValue) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Warnw("put setting failed", "key", key, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := h.svc.Delete(r.Context(), key); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "setting not found"})
			return
		}
		h.logger.Warnw("delete setting failed", "key", key, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
