package expenses

import (
	"strings"

	"github.com/kontorapp/kontor/internal/shared"
)

func validateExpense(e Expense) error {
	if strings.TrimSpace(e.Description) == "" {
		return shared.NewValidationError("description", "description is required")
	}
	if e.Amount <= 0 {
		return shared.NewValidationError("amount", "amount must be greater than zero")
	}
	if e.ExpenseDate.IsZero() {
		return shared.NewValidationError("expense_date", "expense date is required")
	}
	return nil
}

func validateCategory(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewValidationError("name", "category name is required")
	}
	return nil
}
