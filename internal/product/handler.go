package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product/entity"
)

// Handler exposes catalog endpoints: public browse plus admin CRUD.
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
	category := r.URL.Query().Get("category")
	rows, err := h.svc.List(r.Context(), category, limit, offset)
	if err != nil {
		h.logger.Warnw("list products failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	p, err := h.svc.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		h.logger.Warnw("get product failed", "slug", slug, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in entity.Product
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	p, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
			return
		}
		h.logger.Warnw("create product failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in entity.Product
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	in.ID = r.PathValue("id")
	p, err := h.svc.Update(r.Context(), &in)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		default:
			h.logger.Warnw("update product failed", "id", in.ID, "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unexpected error"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Archive(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		h.logger.Warnw("archive product failed", "id", id, "err", err)
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
