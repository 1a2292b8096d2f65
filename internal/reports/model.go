package reports

import "time"

// Period is an inclusive report window.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SalesReport aggregates invoicing activity by calendar month.
type SalesReport struct {
	Period        Period          `json:"period"`
	Months        []SalesMonth    `json:"months"`
	TopCustomers  []CustomerTotal `json:"top_customers"`
	InvoiceCount  int             `json:"invoice_count"`
	InvoicedTotal float64         `json:"invoiced_total"`
	PaidTotal     float64         `json:"paid_total"`
}

// SalesMonth is one monthly bucket of the sales report.
type SalesMonth struct {
	Month         string  `json:"month"`
	InvoiceCount  int     `json:"invoice_count"`
	InvoicedTotal float64 `json:"invoiced_total"`
	PaidTotal     float64 `json:"paid_total"`
}

// CustomerTotal ranks a customer by invoiced volume in the window.
type CustomerTotal struct {
	CustomerID   int64   `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	InvoiceCount int     `json:"invoice_count"`
	Total        float64 `json:"total"`
}

// FinancialReport sets payment income against expenses by month.
type FinancialReport struct {
	Period        Period           `json:"period"`
	Months        []FinancialMonth `json:"months"`
	TotalIncome   float64          `json:"total_income"`
	TotalExpenses float64          `json:"total_expenses"`
	Net           float64          `json:"net"`
}

// FinancialMonth is one monthly bucket of the financial report.
type FinancialMonth struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

func (p Period) marshalMonths() []string {
	var out []string
	cursor := time.Date(p.From.Year(), p.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(p.To.Year(), p.To.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		out = append(out, cursor.Format("2006-01"))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out
}
