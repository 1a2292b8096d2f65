package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository exposes the aggregate queries behind both reports. Months are
// keyed "YYYY-MM"; the service fills gaps with zero buckets.
type Repository interface {
	InvoicesByMonth(ctx context.Context, from, to time.Time) (map[string]SalesMonth, error)
	TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerTotal, error)
	IncomeByMonth(ctx context.Context, from, to time.Time) (map[string]float64, error)
	ExpensesByMonth(ctx context.Context, from, to time.Time) (map[string]float64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL report repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) InvoicesByMonth(ctx context.Context, from, to time.Time) (map[string]SalesMonth, error) {
	rows, err := r.db.Query(ctx,
		`SELECT to_char(i.issue_date, 'YYYY-MM'),
			COUNT(*),
			COALESCE(SUM(i.total), 0),
			COALESCE(SUM(p.paid), 0)
		 FROM invoices i
		 LEFT JOIN (SELECT invoice_id, SUM(amount) AS paid FROM invoice_payments GROUP BY invoice_id) p
			ON p.invoice_id = i.id
		 WHERE i.issue_date >= $1 AND i.issue_date <= $2 AND i.status <> 'cancelled'
		 GROUP BY 1`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]SalesMonth)
	for rows.Next() {
		var m SalesMonth
		if err := rows.Scan(&m.Month, &m.InvoiceCount, &m.InvoicedTotal, &m.PaidTotal); err != nil {
			return nil, err
		}
		out[m.Month] = m
	}
	return out, rows.Err()
}

func (r *repository) TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.first_name || ' ' || c.last_name, COUNT(i.id), COALESCE(SUM(i.total), 0)
		 FROM invoices i
		 JOIN customers c ON c.id = i.customer_id
		 WHERE i.issue_date >= $1 AND i.issue_date <= $2 AND i.status <> 'cancelled'
		 GROUP BY c.id, c.first_name, c.last_name
		 ORDER BY SUM(i.total) DESC
		 LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerTotal
	for rows.Next() {
		var c CustomerTotal
		if err := rows.Scan(&c.CustomerID, &c.CustomerName, &c.InvoiceCount, &c.Total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) IncomeByMonth(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	return r.sumByMonth(ctx,
		`SELECT to_char(payment_date, 'YYYY-MM'), COALESCE(SUM(amount), 0)
		 FROM invoice_payments
		 WHERE payment_date >= $1 AND payment_date <= $2
		 GROUP BY 1`, from, to)
}

func (r *repository) ExpensesByMonth(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	return r.sumByMonth(ctx,
		`SELECT to_char(expense_date, 'YYYY-MM'), COALESCE(SUM(amount), 0)
		 FROM expenses
		 WHERE expense_date >= $1 AND expense_date <= $2
		 GROUP BY 1`, from, to)
}

func (r *repository) sumByMonth(ctx context.Context, query string, from, to time.Time) (map[string]float64, error) {
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var month string
		var sum float64
		if err := rows.Scan(&month, &sum); err != nil {
			return nil, err
		}
		out[month] = sum
	}
	return out, rows.Err()
}
