package expense

import "time"

type Expense struct {
	ID              int64     `gorm:"primaryKey"`
	TransactionType string    `gorm:"column:transaction_type;default:expense"`
	AmountCents     int64     `gorm:"column:amount_cents;not null"`
	Description     *string   `gorm:"column:description"`
	Date            time.Time `gorm:"column:date;type:date"`
	CategoryID      *int64    `gorm:"column:category_id"`
	UserID          int64     `gorm:"column:user_id;not null"`
	ReceiptPath     *string   `gorm:"column:receipt_path"`
	ReceiptFileName *string   `gorm:"column:receipt_filename"`
	ReceiptSHA256   *string   `gorm:"column:receipt_sha256"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ExpenseWithCategory is an expense row joined with its category's
// display fields. Both are nil when the expense is uncategorized.
type ExpenseWithCategory struct {
	Expense      `gorm:"embedded"`
	CategoryName *string `gorm:"column:category_name"`
	CategoryIcon *string `gorm:"column:category_icon"`
}
