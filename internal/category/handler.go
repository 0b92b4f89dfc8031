package category

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/finance-tracker/internal/auth"
	"github.com/frahmantamala/finance-tracker/internal/transport"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(userID int64) ([]*Category, error)
	Get(id, userID int64) (*Category, error)
	Create(userID int64, dto UpsertDTO) (*Category, error)
	Update(id, userID int64, dto UpsertDTO) (*Category, error)
	Patch(id, userID int64, dto PatchDTO) (*Category, error)
	Delete(id, userID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func (h *Handler) categoryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	categories, err := h.Service.List(user.ID)
	if err != nil {
		h.Logger.Error("List: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get categories")
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	category, err := h.Service.Get(id, user.ID)
	if err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var dto UpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Service.Create(user.ID, dto)
	if err != nil {
		h.handleError(w, err, 0, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	var dto UpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Service.Update(id, user.ID, dto)
	if err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	var dto PatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Service.Patch(id, user.ID, dto)
	if err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(id, user.ID); err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(w http.ResponseWriter, err error, categoryID, userID int64) {
	h.Logger.Error("category handler: service error", "error", err, "category_id", categoryID, "user_id", userID)

	switch err {
	case ErrNotFound:
		h.WriteError(w, http.StatusNotFound, "category not found")
	case ErrInvalidParent:
		h.WriteError(w, http.StatusBadRequest, "parent category not found")
	default:
		h.HandleServiceError(w, err)
	}
}
