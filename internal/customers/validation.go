package customers

import (
	"strings"

	"github.com/kontorapp/kontor/internal/shared"
)

func validate(c Customer) error {
	if strings.TrimSpace(c.FirstName) == "" {
		return shared.NewValidationError("first_name", "first name is required")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return shared.NewValidationError("last_name", "last name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return shared.NewValidationError("email", "email is required")
	}
	return nil
}
