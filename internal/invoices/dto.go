package invoices

import "time"

// DTO is the invoice view shape. PaidAmount, BalanceDue and IsOverdue are
// derived at mapping time; overdue means a sent invoice past its due date.
type DTO struct {
	ID           int64
	Number       string
	CustomerID   int64
	CustomerName string
	Status       Status
	StatusLabel  string
	IssueDate    time.Time
	DueDate      time.Time
	Notes        string
	Total        float64
	PaidAmount   float64
	BalanceDue   float64
	IsOverdue    bool
	Lines        []LineDTO
	Payments     []PaymentDTO
	CreatedAt    time.Time
}

// LineDTO mirrors Line for views.
type LineDTO struct {
	ID          int64
	Description string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64
}

// PaymentDTO mirrors Payment for views.
type PaymentDTO struct {
	ID          int64
	Amount      float64
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
}

// toSummaryDTO builds a list-view shape without child rows; the paid sum
// comes from an aggregate in the search query.
func toSummaryDTO(inv Invoice, customerName string, paidAmount float64, now time.Time) DTO {
	return DTO{
		ID:           inv.ID,
		Number:       inv.Number,
		CustomerID:   inv.CustomerID,
		CustomerName: customerName,
		Status:       inv.Status,
		StatusLabel:  inv.Status.Label(),
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		Notes:        inv.Notes,
		Total:        inv.Total,
		PaidAmount:   paidAmount,
		BalanceDue:   inv.Total - paidAmount,
		IsOverdue:    inv.Status == StatusSent && inv.DueDate.Before(now),
		CreatedAt:    inv.CreatedAt,
	}
}

func toDTO(inv Invoice, customerName string, lines []Line, payments []Payment, now time.Time) DTO {
	dto := DTO{
		ID:           inv.ID,
		Number:       inv.Number,
		CustomerID:   inv.CustomerID,
		CustomerName: customerName,
		Status:       inv.Status,
		StatusLabel:  inv.Status.Label(),
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		Notes:        inv.Notes,
		Total:        inv.Total,
		CreatedAt:    inv.CreatedAt,
	}
	for _, l := range lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ID:          l.ID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}
	for _, p := range payments {
		dto.PaidAmount += p.Amount
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:          p.ID,
			Amount:      p.Amount,
			PaymentDate: p.PaymentDate,
			Method:      p.Method,
			Reference:   p.Reference,
			Notes:       p.Notes,
		})
	}
	dto.BalanceDue = inv.Total - dto.PaidAmount
	dto.IsOverdue = inv.Status == StatusSent && inv.DueDate.Before(now)
	return dto
}
