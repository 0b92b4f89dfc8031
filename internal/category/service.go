package category

import (
	"log/slog"

	categoryDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAllByUser(userID int64) ([]*categoryDatamodel.Category, error)
	GetByIDForUser(id, userID int64) (*categoryDatamodel.Category, error)
	Create(category *categoryDatamodel.Category) error
	Update(category *categoryDatamodel.Category) error
	// Delete removes the category and, via the FK, all of its children.
	Delete(id, userID int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(userID int64) ([]*Category, error) {
	dataCategories, err := s.repo.GetAllByUser(userID)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err, "user_id", userID)
		return nil, err
	}
	return FromDataModelSlice(dataCategories), nil
}

func (s *Service) Get(id, userID int64) (*Category, error) {
	dm, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, ErrNotFound
	}
	return FromDataModel(dm), nil
}

// Create inserts a category owned by userID. A parent, when given, must exist
// and belong to the same user; the same generic error covers both failures so
// a caller cannot probe other users' category ids.
func (s *Service) Create(userID int64, dto UpsertDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := &Category{
		Name:     dto.Name,
		Icon:     dto.Icon,
		Type:     dto.Type,
		ParentID: dto.ParentID,
		UserID:   userID,
	}
	if c.Icon == "" {
		c.Icon = DefaultIcon
	}
	if c.Type == "" {
		c.Type = TypeExpense
	}

	if err := s.checkParent(c.ParentID, 0, userID); err != nil {
		return nil, err
	}

	dm := ToDataModel(c)
	if err := s.repo.Create(dm); err != nil {
		s.logger.Error("failed to create category", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("category created", "category_id", dm.ID, "user_id", userID, "name", c.Name)
	return FromDataModel(dm), nil
}

// Update replaces all writable fields of the category.
func (s *Service) Update(id, userID int64, dto UpsertDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dm, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, ErrNotFound
	}

	if err := s.checkParent(dto.ParentID, id, userID); err != nil {
		return nil, err
	}

	dm.Name = dto.Name
	dm.Icon = dto.Icon
	if dm.Icon == "" {
		dm.Icon = DefaultIcon
	}
	dm.Type = dto.Type
	if dm.Type == "" {
		dm.Type = TypeExpense
	}
	dm.ParentID = dto.ParentID

	if err := s.repo.Update(dm); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}
	return FromDataModel(dm), nil
}

// Patch applies a partial update; nil DTO fields keep their stored values.
func (s *Service) Patch(id, userID int64, dto PatchDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dm, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, ErrNotFound
	}

	if dto.Name != nil {
		dm.Name = *dto.Name
	}
	if dto.Icon != nil {
		dm.Icon = *dto.Icon
	}
	if dto.Type != nil {
		dm.Type = *dto.Type
	}
	if dto.HasParent {
		if err := s.checkParent(dto.ParentID, id, userID); err != nil {
			return nil, err
		}
		dm.ParentID = dto.ParentID
	}

	if err := s.repo.Update(dm); err != nil {
		s.logger.Error("failed to patch category", "error", err, "category_id", id)
		return nil, err
	}
	return FromDataModel(dm), nil
}

// Delete removes the category; children go with it, and expenses referencing
// it keep existing with a null category.
func (s *Service) Delete(id, userID int64) error {
	dm, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return err
	}
	if dm == nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(id, userID); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return err
	}

	s.logger.Info("category deleted", "category_id", id, "user_id", userID)
	return nil
}

// IsOwnedBy reports whether the category id exists for userID; used by the
// expense service to validate category references.
func (s *Service) IsOwnedBy(id, userID int64) (bool, error) {
	dm, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return false, err
	}
	return dm != nil, nil
}

// checkParent enforces the ownership invariant: parent must exist, belong to
// the same user, and differ from the category itself.
func (s *Service) checkParent(parentID *int64, selfID, userID int64) error {
	if parentID == nil {
		return nil
	}
	if selfID != 0 && *parentID == selfID {
		return ErrInvalidParent
	}
	parent, err := s.repo.GetByIDForUser(*parentID, userID)
	if err != nil {
		return err
	}
	if parent == nil {
		return ErrInvalidParent
	}
	return nil
}

// SeedDefaults creates the starter taxonomy for a new account. Called by the
// registration service right after the user row is created.
func (s *Service) SeedDefaults(userID int64) error {
	for _, root := range defaultTaxonomy {
		parent := &categoryDatamodel.Category{
			Name:   root.Name,
			Icon:   root.Icon,
			Type:   root.Type,
			UserID: userID,
		}
		if err := s.repo.Create(parent); err != nil {
			return err
		}
		for _, child := range root.Children {
			pid := parent.ID
			c := &categoryDatamodel.Category{
				Name:     child.Name,
				Icon:     child.Icon,
				Type:     child.Type,
				ParentID: &pid,
				UserID:   userID,
			}
			if err := s.repo.Create(c); err != nil {
				return err
			}
		}
	}

	s.logger.Info("default categories seeded", "user_id", userID)
	return nil
}
