package category

import (
	"encoding/json"

	errors "github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/core/common/validation"
)

// UpsertDTO is the request payload for creating or fully updating a category.
type UpsertDTO struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parent"`
}

func (dto UpsertDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("icon", dto.Icon).MaxLength(50)
	v.Field("type", dto.Type).OneOf(TypeExpense, TypeIncome)
	return v.Validate()
}

// PatchDTO carries a partial update; nil fields are left untouched.
type PatchDTO struct {
	Name     *string `json:"name"`
	Icon     *string `json:"icon"`
	Type     *string `json:"type"`
	ParentID *int64  `json:"parent"`
	// HasParent distinguishes "parent omitted" from "parent: null".
	HasParent bool `json:"-"`
}

func (dto *PatchDTO) UnmarshalJSON(data []byte) error {
	type alias PatchDTO
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*dto = PatchDTO(a)
	_, dto.HasParent = raw["parent"]
	return nil
}

func (dto PatchDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(100)
	}
	if dto.Icon != nil {
		v.Field("icon", *dto.Icon).MaxLength(50)
	}
	if dto.Type != nil {
		v.Field("type", *dto.Type).Required().OneOf(TypeExpense, TypeIncome)
	}
	return v.Validate()
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}
