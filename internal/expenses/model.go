package expenses

import "time"

// Category groups expenses for reporting.
type Category struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expense is a single outgoing cost entry.
type Expense struct {
	ID            int64
	Description   string
	Amount        float64
	ExpenseDate   time.Time
	CategoryID    *int64
	Vendor        string
	ReceiptNumber string
	Notes         string
	IsPaid        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SearchFilters narrows expense listings; filters combine with logical AND.
type SearchFilters struct {
	Term       string
	CategoryID *int64
	From       *time.Time
	To         *time.Time
	IsPaid     *bool
}
