package passwordreset

import (
	"github.com/frahmantamala/finance-tracker/internal/core/common/validation"
)

type RequestDTO struct {
	Email string `json:"email"`
}

func (d *RequestDTO) Validate() error {
	v := validation.NewValidator()
	if err := validation.ValidateEmail(d.Email); err != nil {
		v.AddError("email", err.Error())
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ConfirmDTO carries the two password fields of the confirm form.
type ConfirmDTO struct {
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

func (d *ConfirmDTO) Validate() error {
	v := validation.NewValidator()
	if err := validation.ValidatePassword(d.NewPassword1); err != nil {
		v.AddError("new_password1", err.Error())
	}
	if d.NewPassword1 != d.NewPassword2 {
		v.AddError("new_password2", "passwords do not match")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type MessageResponse struct {
	Detail string `json:"detail"`
}
