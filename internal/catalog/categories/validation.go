package categories

import (
	"strings"

	"github.com/kontorapp/kontor/internal/shared"
)

func validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewValidationError("name", "category name is required")
	}
	return nil
}
