package expense

import (
	"log/slog"

	expenseDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/finance-tracker/internal/receipt"
)

type RepositoryAPI interface {
	GetAllByUser(userID int64) ([]*expenseDatamodel.ExpenseWithCategory, error)
	GetByIDForUser(id, userID int64) (*expenseDatamodel.ExpenseWithCategory, error)
	Create(expense *expenseDatamodel.Expense) error
	Update(expense *expenseDatamodel.Expense) error
	Delete(id, userID int64) error
}

// CategoryValidator checks that a referenced category exists and is
// owned by the writing user.
type CategoryValidator interface {
	IsOwnedBy(id, userID int64) (bool, error)
}

// ReceiptStore persists normalized receipt images.
type ReceiptStore interface {
	Save(data []byte) (string, error)
	Remove(rel string) error
}

// Upload is a raw receipt file as received from the client.
type Upload struct {
	Data     []byte
	FileName string
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryValidator
	store      ReceiptStore
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryValidator, store ReceiptStore, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		store:      store,
		logger:     logger,
	}
}

func (s *Service) List(userID int64) ([]*Expense, error) {
	rows, err := s.repo.GetAllByUser(userID)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "user_id", userID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) Get(id, userID int64) (*Expense, error) {
	dm, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, ErrNotFound
	}
	return FromDataModelWithCategory(dm), nil
}

// Create records a new expense for userID. A referenced category must
// belong to the same user; a receipt upload, when present, is
// normalized before anything is persisted so an undecodable image
// rejects the whole request.
func (s *Service) Create(userID int64, dto UpsertDTO, upload *Upload) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(dto.CategoryID, userID); err != nil {
		return nil, err
	}

	dm := &expenseDatamodel.Expense{
		TransactionType: dto.TransactionType,
		AmountCents:     dto.AmountCents(),
		Description:     dto.Description,
		Date:            dto.ParsedDate(),
		CategoryID:      dto.CategoryID,
		UserID:          userID,
	}

	if upload != nil {
		if err := s.attachReceipt(dm, upload, ""); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(dm); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", userID)
		s.discardReceipt(dm.ReceiptPath)
		return nil, err
	}

	return s.Get(dm.ID, userID)
}

// Update replaces every writable field of the expense. Without an
// upload the stored receipt is kept as is.
func (s *Service) Update(id, userID int64, dto UpsertDTO, upload *Upload) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(dto.CategoryID, userID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	dm := &existing.Expense
	dm.TransactionType = dto.TransactionType
	dm.AmountCents = dto.AmountCents()
	dm.Description = dto.Description
	dm.Date = dto.ParsedDate()
	dm.CategoryID = dto.CategoryID

	oldPath := dm.ReceiptPath
	replaced := false
	if upload != nil {
		prevSHA := ""
		if dm.ReceiptSHA256 != nil {
			prevSHA = *dm.ReceiptSHA256
		}
		replaced, err = s.replaceReceipt(dm, upload, prevSHA)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(dm); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id, "user_id", userID)
		if replaced {
			s.discardReceipt(dm.ReceiptPath)
		}
		return nil, err
	}
	if replaced {
		s.discardReceipt(oldPath)
	}

	return s.Get(id, userID)
}

// Patch updates only the fields the client sent.
func (s *Service) Patch(id, userID int64, dto PatchDTO, upload *Upload) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.HasCategory {
		if err := s.checkCategory(dto.CategoryID, userID); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	dm := &existing.Expense
	if dto.TransactionType != nil {
		dm.TransactionType = *dto.TransactionType
	}
	if cents := dto.AmountCents(); cents != nil {
		dm.AmountCents = *cents
	}
	if dto.HasDescription {
		dm.Description = dto.Description
	}
	if date := dto.ParsedDate(); date != nil {
		dm.Date = *date
	}
	if dto.HasCategory {
		dm.CategoryID = dto.CategoryID
	}

	oldPath := dm.ReceiptPath
	replaced := false
	if upload != nil {
		prevSHA := ""
		if dm.ReceiptSHA256 != nil {
			prevSHA = *dm.ReceiptSHA256
		}
		replaced, err = s.replaceReceipt(dm, upload, prevSHA)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(dm); err != nil {
		s.logger.Error("failed to patch expense", "error", err, "expense_id", id, "user_id", userID)
		if replaced {
			s.discardReceipt(dm.ReceiptPath)
		}
		return nil, err
	}
	if replaced {
		s.discardReceipt(oldPath)
	}

	return s.Get(id, userID)
}

// Delete removes the expense and its stored receipt file.
func (s *Service) Delete(id, userID int64) error {
	existing, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(id, userID); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id, "user_id", userID)
		return err
	}

	s.discardReceipt(existing.ReceiptPath)
	return nil
}

// checkCategory validates a category reference. Not-found and
// not-owned collapse into the same error so ids cannot be probed.
func (s *Service) checkCategory(categoryID *int64, userID int64) error {
	if categoryID == nil {
		return nil
	}
	owned, err := s.categories.IsOwnedBy(*categoryID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrInvalidCategory
	}
	return nil
}

// attachReceipt normalizes the upload, writes it to the store and
// fills in the receipt columns.
func (s *Service) attachReceipt(dm *expenseDatamodel.Expense, upload *Upload, prevSHA string) error {
	norm, err := receipt.Normalize(upload.Data, upload.FileName, prevSHA)
	if err != nil {
		return err
	}

	path, err := s.store.Save(norm.Data)
	if err != nil {
		s.logger.Error("failed to store receipt", "error", err)
		return err
	}

	dm.ReceiptPath = &path
	dm.ReceiptFileName = &norm.FileName
	dm.ReceiptSHA256 = &norm.SHA256
	return nil
}

// replaceReceipt swaps in a new upload unless it normalizes to the
// exact bytes already stored. Returns whether a new file was written;
// the caller removes the old file only after the row update lands.
func (s *Service) replaceReceipt(dm *expenseDatamodel.Expense, upload *Upload, prevSHA string) (bool, error) {
	norm, err := receipt.Normalize(upload.Data, upload.FileName, prevSHA)
	if err != nil {
		return false, err
	}
	if norm.Unchanged {
		return false, nil
	}

	path, err := s.store.Save(norm.Data)
	if err != nil {
		s.logger.Error("failed to store receipt", "error", err)
		return false, err
	}

	dm.ReceiptPath = &path
	dm.ReceiptFileName = &norm.FileName
	dm.ReceiptSHA256 = &norm.SHA256
	return true, nil
}

func (s *Service) discardReceipt(path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := s.store.Remove(*path); err != nil {
		s.logger.Warn("failed to remove receipt file", "error", err, "path", *path)
	}
}
