package invoices

import (
	"strings"

	"github.com/kontorapp/kontor/internal/shared"
)

func validateInvoice(inv Invoice, lines []Line) error {
	if inv.CustomerID == 0 {
		return shared.NewValidationError("customer_id", "customer is required")
	}
	if inv.IssueDate.IsZero() {
		return shared.NewValidationError("issue_date", "issue date is required")
	}
	if inv.DueDate.IsZero() {
		return shared.NewValidationError("due_date", "due date is required")
	}
	if inv.DueDate.Before(inv.IssueDate) {
		return shared.NewValidationError("due_date", "due date cannot precede issue date")
	}
	if len(lines) == 0 {
		return shared.NewValidationError("lines", "at least one line is required")
	}
	for _, l := range lines {
		if strings.TrimSpace(l.Description) == "" {
			return shared.NewValidationError("lines", "line description is required")
		}
		if l.Quantity <= 0 {
			return shared.NewValidationError("lines", "line quantity must be greater than zero")
		}
		if l.UnitPrice < 0 {
			return shared.NewValidationError("lines", "line unit price cannot be negative")
		}
	}
	return nil
}

func validatePayment(p Payment) error {
	if p.Amount <= 0 {
		return shared.NewValidationError("amount", "payment amount must be greater than zero")
	}
	if p.PaymentDate.IsZero() {
		return shared.NewValidationError("payment_date", "payment date is required")
	}
	return nil
}
