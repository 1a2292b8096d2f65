package invoices

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kontorapp/kontor/internal/platform/db"
	"github.com/kontorapp/kontor/internal/shared"
)

// Row is a list-view invoice with the customer name and the payment sum
// aggregated in the query.
type Row struct {
	Invoice      Invoice
	CustomerName string
	PaidAmount   float64
}

// Detail is a fully loaded invoice with its child rows.
type Detail struct {
	Invoice      Invoice
	CustomerName string
	Lines        []Line
	Payments     []Payment
}

// Repository defines persistence operations for invoices.
type Repository interface {
	Search(ctx context.Context, filters SearchFilters) ([]Row, error)
	Get(ctx context.Context, id int64) (Detail, error)
	Create(ctx context.Context, inv Invoice, lines []Line) (Invoice, error)
	NextSequence(ctx context.Context, prefix string) (int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	AddPayment(ctx context.Context, p Payment, markPaid bool) (Payment, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const invoiceSelect = `SELECT i.id, i.number, i.customer_id, i.status, i.issue_date, i.due_date, i.notes, i.total, i.created_at, i.updated_at,
	COALESCE(c.first_name || ' ' || c.last_name, ''),
	COALESCE((SELECT SUM(p.amount) FROM invoice_payments p WHERE p.invoice_id = i.id), 0)
	FROM invoices i LEFT JOIN customers c ON c.id = i.customer_id`

func (r *repository) Search(ctx context.Context, filters SearchFilters) ([]Row, error) {
	query := invoiceSelect + ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Term != "" {
		argCount++
		query += ` AND i.number ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Term+"%")
	}
	if filters.CustomerID != nil {
		argCount++
		query += ` AND i.customer_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CustomerID)
	}
	if filters.Status != nil {
		argCount++
		query += ` AND i.status = $` + strconv.Itoa(argCount)
		args = append(args, string(*filters.Status))
	}
	if filters.From != nil {
		argCount++
		query += ` AND i.issue_date >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		argCount++
		query += ` AND i.issue_date <= $` + strconv.Itoa(argCount)
		args = append(args, *filters.To)
	}

	query += ` ORDER BY i.issue_date DESC, i.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.Invoice.ID, &row.Invoice.Number, &row.Invoice.CustomerID, &row.Invoice.Status,
			&row.Invoice.IssueDate, &row.Invoice.DueDate, &row.Invoice.Notes, &row.Invoice.Total,
			&row.Invoice.CreatedAt, &row.Invoice.UpdatedAt, &row.CustomerName, &row.PaidAmount,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Detail, error) {
	var d Detail
	var paid float64
	err := r.db.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id).Scan(
		&d.Invoice.ID, &d.Invoice.Number, &d.Invoice.CustomerID, &d.Invoice.Status,
		&d.Invoice.IssueDate, &d.Invoice.DueDate, &d.Invoice.Notes, &d.Invoice.Total,
		&d.Invoice.CreatedAt, &d.Invoice.UpdatedAt, &d.CustomerName, &paid,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, shared.ErrNotFound
	}
	if err != nil {
		return Detail{}, err
	}

	lineRows, err := r.db.Query(ctx, `SELECT id, invoice_id, description, quantity, unit_price, subtotal
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`, id)
	if err != nil {
		return Detail{}, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l Line
		if err := lineRows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return Detail{}, err
		}
		d.Lines = append(d.Lines, l)
	}
	if err := lineRows.Err(); err != nil {
		return Detail{}, err
	}

	payRows, err := r.db.Query(ctx, `SELECT id, invoice_id, amount, payment_date, method, reference, notes, created_at
		FROM invoice_payments WHERE invoice_id = $1 ORDER BY payment_date, id`, id)
	if err != nil {
		return Detail{}, err
	}
	defer payRows.Close()
	for payRows.Next() {
		var p Payment
		if err := payRows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate, &p.Method, &p.Reference, &p.Notes, &p.CreatedAt); err != nil {
			return Detail{}, err
		}
		d.Payments = append(d.Payments, p)
	}
	return d, payRows.Err()
}

func (r *repository) Create(ctx context.Context, inv Invoice, lines []Line) (Invoice, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO invoices (number, customer_id, status, issue_date, due_date, notes, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at`,
			inv.Number, inv.CustomerID, string(inv.Status), inv.IssueDate, inv.DueDate, inv.Notes, inv.Total,
		).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
		if err != nil {
			return shared.MapPgError(err)
		}
		for _, l := range lines {
			_, err := tx.Exec(ctx, `INSERT INTO invoice_lines (invoice_id, description, quantity, unit_price, subtotal)
				VALUES ($1, $2, $3, $4, $5)`,
				inv.ID, l.Description, l.Quantity, l.UnitPrice, l.Subtotal,
			)
			if err != nil {
				return shared.MapPgError(err)
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) NextSequence(ctx context.Context, prefix string) (int, error) {
	var max int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(SUBSTRING(number FROM '[0-9]+$')::int), 0) FROM invoices WHERE number LIKE $1`,
		prefix+"%",
	).Scan(&max)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET status = $1, updated_at = now() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AddPayment(ctx context.Context, p Payment, markPaid bool) (Payment, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO invoice_payments (invoice_id, amount, payment_date, method, reference, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`,
			p.InvoiceID, p.Amount, p.PaymentDate, p.Method, p.Reference, p.Notes,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return shared.MapPgError(err)
		}
		if markPaid {
			_, err = tx.Exec(ctx, `UPDATE invoices SET status = $1, updated_at = now() WHERE id = $2`,
				string(StatusPaid), p.InvoiceID)
		}
		return err
	})
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_payments WHERE invoice_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
