package passwordreset

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/finance-tracker/internal/transport"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Request always answers with the same message whether or not the
// email maps to an account.
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	var dto RequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.RequestReset(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Detail: "Password reset e-mail has been sent."})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	token := chi.URLParam(r, "token")

	var dto ConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ConfirmReset(uid, token, dto); err != nil {
		if errors.Is(err, ErrInvalidLink) {
			h.WriteError(w, http.StatusBadRequest, "Invalid or expired reset link")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Detail: "Password has been reset with the new password."})
}
