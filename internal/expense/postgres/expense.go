package postgres

import (
	expenseDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/finance-tracker/internal/expense"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

const selectWithCategory = `
	SELECT e.*, c.name AS category_name, c.icon AS category_icon
	FROM expenses e
	LEFT JOIN categories c ON c.id = e.category_id
`

func (r *ExpenseRepository) GetAllByUser(userID int64) ([]*expenseDatamodel.ExpenseWithCategory, error) {
	var rows []*expenseDatamodel.ExpenseWithCategory
	err := r.db.Raw(selectWithCategory+`
		WHERE e.user_id = ?
		ORDER BY e.date DESC, e.id DESC
	`, userID).Scan(&rows).Error
	return rows, err
}

func (r *ExpenseRepository) GetByIDForUser(id, userID int64) (*expenseDatamodel.ExpenseWithCategory, error) {
	var rows []*expenseDatamodel.ExpenseWithCategory
	err := r.db.Raw(selectWithCategory+`
		WHERE e.id = ? AND e.user_id = ?
	`, id, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ExpenseRepository) Create(e *expenseDatamodel.Expense) error {
	return r.db.Create(e).Error
}

func (r *ExpenseRepository) Update(e *expenseDatamodel.Expense) error {
	return r.db.Save(e).Error
}

func (r *ExpenseRepository) Delete(id, userID int64) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&expenseDatamodel.Expense{}).Error
}
