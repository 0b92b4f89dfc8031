package category

import (
	"errors"
	"time"

	categoryDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/category"
)

const (
	TypeExpense = "expense"
	TypeIncome  = "income"

	// DefaultIcon matches the icon the frontend falls back to.
	DefaultIcon = "mdi-help-circle"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Type      string    `json:"type"`
	ParentID  *int64    `json:"parent"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

var (
	ErrNotFound      = errors.New("category not found")
	ErrInvalidParent = errors.New("parent category not found")
)

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		Type:      c.Type,
		ParentID:  c.ParentID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		Type:      c.Type,
		ParentID:  c.ParentID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModelSlice(categories []*categoryDatamodel.Category) []*Category {
	result := make([]*Category, len(categories))
	for i, c := range categories {
		result[i] = FromDataModel(c)
	}
	return result
}

// defaultTaxonomy is the starter category tree created for every new account.
type defaultCategory struct {
	Name     string
	Icon     string
	Type     string
	Children []defaultCategory
}

var defaultTaxonomy = []defaultCategory{
	{
		Name: "Food", Icon: "🍔", Type: TypeExpense,
		Children: []defaultCategory{
			{Name: "Breakfast", Icon: "🍞", Type: TypeExpense},
			{Name: "Lunch", Icon: "🍗", Type: TypeExpense},
			{Name: "Dinner", Icon: "🍜", Type: TypeExpense},
			{Name: "Dessert", Icon: "🍦", Type: TypeExpense},
		},
	},
	{
		Name: "Transport", Icon: "🚗", Type: TypeExpense,
		Children: []defaultCategory{
			{Name: "Grab/Taxi", Icon: "🚕", Type: TypeExpense},
			{Name: "Fuel", Icon: "⛽", Type: TypeExpense},
			{Name: "Public Transport", Icon: "🚆", Type: TypeExpense},
		},
	},
	{
		Name: "Shopping", Icon: "🛍️", Type: TypeExpense,
		Children: []defaultCategory{
			{Name: "Groceries", Icon: "🥦", Type: TypeExpense},
			{Name: "Clothes", Icon: "👕", Type: TypeExpense},
		},
	},
	{
		Name: "Entertainment", Icon: "🎉", Type: TypeExpense,
		Children: []defaultCategory{
			{Name: "Movies", Icon: "🎬", Type: TypeExpense},
			{Name: "Games", Icon: "🎮", Type: TypeExpense},
		},
	},
	{
		Name: "Income", Icon: "💰", Type: TypeIncome,
		Children: []defaultCategory{
			{Name: "Salary", Icon: "💵", Type: TypeIncome},
			{Name: "Bonus", Icon: "🎁", Type: TypeIncome},
		},
	},
}
