package products

import (
	"strings"

	"github.com/kontorapp/kontor/internal/shared"
)

func validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.NewValidationError("name", "product name is required")
	}
	if !p.Type.Valid() {
		return shared.NewValidationError("type", "type must be product or service")
	}
	if p.Price < 0 {
		return shared.NewValidationError("price", "price cannot be negative")
	}
	if p.Cost != nil && *p.Cost < 0 {
		return shared.NewValidationError("cost", "cost cannot be negative")
	}
	return nil
}
