package expense

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/frahmantamala/finance-tracker/internal/auth"
	"github.com/frahmantamala/finance-tracker/internal/receipt"
	"github.com/frahmantamala/finance-tracker/internal/transport"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

// maxUploadBytes bounds the in-memory receipt upload.
const maxUploadBytes = 10 << 20

type ServiceAPI interface {
	List(userID int64) ([]*Expense, error)
	Get(id, userID int64) (*Expense, error)
	Create(userID int64, dto UpsertDTO, upload *Upload) (*Expense, error)
	Update(id, userID int64, dto UpsertDTO, upload *Upload) (*Expense, error)
	Patch(id, userID int64, dto PatchDTO, upload *Upload) (*Expense, error)
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

func (h *Handler) expenseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	expenses, err := h.Service.List(user.ID)
	if err != nil {
		h.Logger.Error("List: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get expenses")
		return
	}

	h.WriteJSON(w, http.StatusOK, NewExpensesResponse(expenses))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.expenseID(w, r)
	if !ok {
		return
	}

	expense, err := h.Service.Get(id, user.ID)
	if err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewExpenseResponse(expense))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	dto, upload, ok := h.parseUpsert(w, r)
	if !ok {
		return
	}

	expense, err := h.Service.Create(user.ID, dto, upload)
	if err != nil {
		h.handleError(w, err, 0, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusCreated, NewExpenseResponse(expense))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.expenseID(w, r)
	if !ok {
		return
	}

	dto, upload, ok := h.parseUpsert(w, r)
	if !ok {
		return
	}

	expense, err := h.Service.Update(id, user.ID, dto, upload)
	if err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewExpenseResponse(expense))
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.expenseID(w, r)
	if !ok {
		return
	}

	dto, upload, ok := h.parsePatch(w, r)
	if !ok {
		return
	}

	expense, err := h.Service.Patch(id, user.ID, dto, upload)
	if err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewExpenseResponse(expense))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.expenseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(id, user.ID); err != nil {
		h.handleError(w, err, id, user.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseUpsert reads a create/update body. Multipart requests carry the
// fields as form values plus an optional "receipt" file; anything else
// is decoded as JSON without an upload.
func (h *Handler) parseUpsert(w http.ResponseWriter, r *http.Request) (UpsertDTO, *Upload, bool) {
	var dto UpsertDTO

	if !isMultipart(r) {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return dto, nil, false
		}
		return dto, nil, true
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return dto, nil, false
	}

	dto.TransactionType = r.FormValue("transaction_type")
	dto.Amount = r.FormValue("amount")
	dto.Date = r.FormValue("date")
	if v, present := formValue(r, "description"); present {
		dto.Description = &v
	}
	if v, present := formValue(r, "category"); present && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid category ID")
			return dto, nil, false
		}
		dto.CategoryID = &id
	}

	upload, ok := h.receiptUpload(w, r)
	if !ok {
		return dto, nil, false
	}
	return dto, upload, true
}

func (h *Handler) parsePatch(w http.ResponseWriter, r *http.Request) (PatchDTO, *Upload, bool) {
	var dto PatchDTO

	if !isMultipart(r) {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return dto, nil, false
		}
		return dto, nil, true
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return dto, nil, false
	}

	if v, present := formValue(r, "transaction_type"); present {
		dto.TransactionType = &v
	}
	if v, present := formValue(r, "amount"); present {
		dto.Amount = &v
	}
	if v, present := formValue(r, "description"); present {
		dto.Description = &v
		dto.HasDescription = true
	}
	if v, present := formValue(r, "date"); present {
		dto.Date = &v
	}
	if v, present := formValue(r, "category"); present {
		dto.HasCategory = true
		if v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				h.WriteError(w, http.StatusBadRequest, "invalid category ID")
				return dto, nil, false
			}
			dto.CategoryID = &id
		}
	}

	upload, ok := h.receiptUpload(w, r)
	if !ok {
		return dto, nil, false
	}
	return dto, upload, true
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, present := r.MultipartForm.Value[key]
	if !present || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (h *Handler) receiptUpload(w http.ResponseWriter, r *http.Request) (*Upload, bool) {
	file, header, err := r.FormFile("receipt")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		h.WriteError(w, http.StatusBadRequest, "invalid receipt upload")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid receipt upload")
		return nil, false
	}
	if len(data) > maxUploadBytes {
		h.WriteError(w, http.StatusRequestEntityTooLarge, "receipt file too large")
		return nil, false
	}

	return &Upload{Data: data, FileName: header.Filename}, true
}

func (h *Handler) handleError(w http.ResponseWriter, err error, expenseID, userID int64) {
	h.Logger.Error("expense handler: service error", "error", err, "expense_id", expenseID, "user_id", userID)

	switch {
	case errors.Is(err, ErrNotFound):
		h.WriteError(w, http.StatusNotFound, "expense not found")
	case errors.Is(err, ErrInvalidCategory):
		h.WriteError(w, http.StatusBadRequest, "category not found")
	case errors.Is(err, receipt.ErrUndecodable):
		h.WriteError(w, http.StatusBadRequest, "receipt image could not be decoded")
	default:
		h.HandleServiceError(w, err)
	}
}
