package postgres

import (
	"github.com/frahmantamala/finance-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/category"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAllByUser(userID int64) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByIDForUser(id, userID int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&cat).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(cat *categoryDatamodel.Category) error {
	return r.db.Create(cat).Error
}

func (r *CategoryRepository) Update(cat *categoryDatamodel.Category) error {
	return r.db.Save(cat).Error
}

// Delete removes the row; the parent_id FK cascades to subcategories and the
// expenses FK nulls out references. SQLite test databases need the pragma
// enabled for the same behavior, so deletion of children is also done
// explicitly here.
func (r *CategoryRepository) Delete(id, userID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ? AND user_id = ?", id, userID).
			Delete(&categoryDatamodel.Category{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).
			Delete(&categoryDatamodel.Category{}).Error
	})
}
