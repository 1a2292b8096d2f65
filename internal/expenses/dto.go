package expenses

import "time"

// CategoryDTO is the view shape for an expense category.
type CategoryDTO struct {
	ID           int64
	Name         string
	Description  string
	IsActive     bool
	ExpenseCount int
	CreatedAt    time.Time
}

func toCategoryDTO(c Category, expenseCount int) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		IsActive:     c.IsActive,
		ExpenseCount: expenseCount,
		CreatedAt:    c.CreatedAt,
	}
}

// DTO is the view shape for an expense with its denormalized category name.
type DTO struct {
	ID            int64
	Description   string
	Amount        float64
	ExpenseDate   time.Time
	CategoryID    *int64
	CategoryName  string
	Vendor        string
	ReceiptNumber string
	Notes         string
	IsPaid        bool
	CreatedAt     time.Time
}

func toDTO(e Expense, categoryName string) DTO {
	return DTO{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        e.Amount,
		ExpenseDate:   e.ExpenseDate,
		CategoryID:    e.CategoryID,
		CategoryName:  categoryName,
		Vendor:        e.Vendor,
		ReceiptNumber: e.ReceiptNumber,
		Notes:         e.Notes,
		IsPaid:        e.IsPaid,
		CreatedAt:     e.CreatedAt,
	}
}
