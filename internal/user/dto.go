package user

import (
	errors "github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/core/common/validation"
)

// RegisterDTO is the request payload for POST /api/register/.
type RegisterDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto RegisterDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", dto.Username).Required().MinLength(3).MaxLength(150)
	v.Field("email", dto.Email).Required().Email()
	v.Field("password", dto.Password).Required().MinLength(8).MaxLength(128)
	return v.Validate()
}

// ProfileResponse is the public view of the current user.
type ProfileResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
