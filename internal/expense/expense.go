package expense

import (
	"errors"
	"time"

	expenseDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/expense"
)

const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

type Expense struct {
	ID              int64
	TransactionType string
	AmountCents     int64
	Description     *string
	Date            time.Time
	CategoryID      *int64
	UserID          int64
	ReceiptPath     *string
	ReceiptFileName *string
	ReceiptSHA256   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// CategoryName and CategoryIcon are hydrated from the joined
	// category row for read paths. Nil when uncategorized.
	CategoryName *string
	CategoryIcon *string
}

func (e *Expense) HasReceipt() bool {
	return e.ReceiptPath != nil && *e.ReceiptPath != ""
}

var (
	ErrNotFound        = errors.New("expense not found")
	ErrInvalidCategory = errors.New("category not found")
)

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:              e.ID,
		TransactionType: e.TransactionType,
		AmountCents:     e.AmountCents,
		Description:     e.Description,
		Date:            e.Date,
		CategoryID:      e.CategoryID,
		UserID:          e.UserID,
		ReceiptPath:     e.ReceiptPath,
		ReceiptFileName: e.ReceiptFileName,
		ReceiptSHA256:   e.ReceiptSHA256,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:              e.ID,
		TransactionType: e.TransactionType,
		AmountCents:     e.AmountCents,
		Description:     e.Description,
		Date:            e.Date,
		CategoryID:      e.CategoryID,
		UserID:          e.UserID,
		ReceiptPath:     e.ReceiptPath,
		ReceiptFileName: e.ReceiptFileName,
		ReceiptSHA256:   e.ReceiptSHA256,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModelWithCategory(e *expenseDatamodel.ExpenseWithCategory) *Expense {
	result := FromDataModel(&e.Expense)
	result.CategoryName = e.CategoryName
	result.CategoryIcon = e.CategoryIcon
	return result
}

func FromDataModelSlice(expenses []*expenseDatamodel.ExpenseWithCategory) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModelWithCategory(e)
	}
	return result
}
