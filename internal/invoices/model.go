package invoices

import "time"

// Status is the invoice lifecycle state. Transitions are forward-only.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Label returns the display name for the status.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusSent:
		return "Sent"
	case StatusPaid:
		return "Paid"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// CanTransition reports whether moving from s to next is allowed.
// Draft advances to Sent, Sent advances to Paid, and both Draft and
// Sent may be cancelled. Paid and Cancelled are terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusSent || next == StatusCancelled
	case StatusSent:
		return next == StatusPaid || next == StatusCancelled
	}
	return false
}

// Invoice is the header row; lines and payments hang off it.
type Invoice struct {
	ID         int64
	Number     string
	CustomerID int64
	Status     Status
	IssueDate  time.Time
	DueDate    time.Time
	Notes      string
	Total      float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line is a single billed position. Subtotal is stored, not recomputed.
type Line struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64
}

// Payment is an append-only record against an invoice.
type Payment struct {
	ID          int64
	InvoiceID   int64
	Amount      float64
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
	CreatedAt   time.Time
}

// SearchFilters narrows invoice listings; filters combine with logical AND.
type SearchFilters struct {
	Term       string
	CustomerID *int64
	Status     *Status
	From       *time.Time
	To         *time.Time
}
