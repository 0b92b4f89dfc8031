package expense

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/finance-tracker/internal/core/common/validation"
)

const dateLayout = "2006-01-02"

// UpsertDTO carries the writable expense fields as they arrive on the
// wire: the amount as a decimal string and the date as YYYY-MM-DD.
type UpsertDTO struct {
	TransactionType string  `json:"transaction_type"`
	Amount          string  `json:"amount"`
	Description     *string `json:"description"`
	Date            string  `json:"date"`
	CategoryID      *int64  `json:"category"`

	amountCents int64
	date        time.Time
}

func (d *UpsertDTO) Validate() error {
	v := validation.NewValidator()

	if err := validation.ValidateTransactionType(d.TransactionType); err != nil {
		v.AddError("transaction_type", err.Error())
	}

	cents, err := ParseAmountToCents(d.Amount)
	if err != nil {
		v.AddError("amount", err.Error())
	} else if verr := validation.ValidateAmountCents(cents); verr != nil {
		v.AddError("amount", verr.Error())
	} else {
		d.amountCents = cents
	}

	if d.Date == "" {
		v.AddError("date", "date is required")
	} else if parsed, perr := time.Parse(dateLayout, d.Date); perr != nil {
		v.AddError("date", "date must be in YYYY-MM-DD format")
	} else {
		d.date = parsed
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d *UpsertDTO) AmountCents() int64 { return d.amountCents }
func (d *UpsertDTO) ParsedDate() time.Time {
	return d.date
}

// PatchDTO distinguishes omitted fields from fields explicitly sent,
// so a partial update only touches what the client named.
type PatchDTO struct {
	TransactionType *string
	Amount          *string
	Description     *string
	HasDescription  bool
	Date            *string
	CategoryID      *int64
	HasCategory     bool

	amountCents *int64
	date        *time.Time
}

func (d *PatchDTO) Validate() error {
	v := validation.NewValidator()

	if d.TransactionType != nil {
		if err := validation.ValidateTransactionType(*d.TransactionType); err != nil {
			v.AddError("transaction_type", err.Error())
		}
	}

	if d.Amount != nil {
		cents, err := ParseAmountToCents(*d.Amount)
		if err != nil {
			v.AddError("amount", err.Error())
		} else if verr := validation.ValidateAmountCents(cents); verr != nil {
			v.AddError("amount", verr.Error())
		} else {
			d.amountCents = &cents
		}
	}

	if d.Date != nil {
		if parsed, perr := time.Parse(dateLayout, *d.Date); perr != nil {
			v.AddError("date", "date must be in YYYY-MM-DD format")
		} else {
			d.date = &parsed
		}
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d *PatchDTO) AmountCents() *int64    { return d.amountCents }
func (d *PatchDTO) ParsedDate() *time.Time { return d.date }

// UnmarshalJSON records which keys were present so "description": null
// and "category": null clear the field instead of being ignored.
func (d *PatchDTO) UnmarshalJSON(data []byte) error {
	type alias struct {
		TransactionType *string `json:"transaction_type"`
		Amount          *string `json:"amount"`
		Description     *string `json:"description"`
		Date            *string `json:"date"`
		CategoryID      *int64  `json:"category"`
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.TransactionType = a.TransactionType
	d.Amount = a.Amount
	d.Description = a.Description
	d.Date = a.Date
	d.CategoryID = a.CategoryID
	_, d.HasDescription = raw["description"]
	_, d.HasCategory = raw["category"]
	return nil
}

type ExpenseResponse struct {
	ID              int64   `json:"id"`
	TransactionType string  `json:"transaction_type"`
	Amount          string  `json:"amount"`
	Description     *string `json:"description"`
	Date            string  `json:"date"`
	CategoryID      *int64  `json:"category"`
	CategoryName    *string `json:"category_name,omitempty"`
	CategoryIcon    *string `json:"category_icon,omitempty"`
	ReceiptURL      *string `json:"receipt,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ExpensesResponse struct {
	Expenses []*ExpenseResponse `json:"expenses"`
}

// MediaURLPrefix is where stored receipt files are served from.
const MediaURLPrefix = "/media/"

func NewExpenseResponse(e *Expense) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:              e.ID,
		TransactionType: e.TransactionType,
		Amount:          FormatCents(e.AmountCents),
		Description:     e.Description,
		Date:            e.Date.Format(dateLayout),
		CategoryID:      e.CategoryID,
		CategoryName:    e.CategoryName,
		CategoryIcon:    e.CategoryIcon,
		CreatedAt:       e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if e.HasReceipt() {
		url := MediaURLPrefix + *e.ReceiptPath
		resp.ReceiptURL = &url
	}
	return resp
}

func NewExpensesResponse(expenses []*Expense) ExpensesResponse {
	out := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = NewExpenseResponse(e)
	}
	return ExpensesResponse{Expenses: out}
}
