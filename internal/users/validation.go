package users

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kontorapp/kontor/internal/shared"
)

var emailValidator = validator.New()

func validateInput(in Input, passwordRequired bool) error {
	if strings.TrimSpace(in.Email) == "" {
		return shared.NewValidationError("email", "email is required")
	}
	if err := emailValidator.Var(in.Email, "email"); err != nil {
		return shared.NewValidationError("email", "email is not valid")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return shared.NewValidationError("first_name", "first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return shared.NewValidationError("last_name", "last name is required")
	}
	if passwordRequired && in.Password == "" {
		return shared.NewValidationError("password", "password is required")
	}
	if in.Password != "" && len(in.Password) < 8 {
		return shared.NewValidationError("password", "password must be at least 8 characters")
	}
	return nil
}
