package customers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kontorapp/kontor/internal/shared"
)

// Repository defines persistence operations for customers.
type Repository interface {
	Search(ctx context.Context, filters SearchFilters) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, id int64, c Customer) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const customerColumns = `id, first_name, last_name, email, phone, address, city, country, postal_code, tax_id, notes, is_active, created_at, updated_at`

func (r *repository) Search(ctx context.Context, filters SearchFilters) ([]Customer, int, error) {
	where := ` FROM customers WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Term != "" {
		argCount++
		p := `$` + strconv.Itoa(argCount)
		where += ` AND (first_name ILIKE ` + p + ` OR last_name ILIKE ` + p + ` OR email ILIKE ` + p + ` OR phone ILIKE ` + p + ` OR tax_id ILIKE ` + p + `)`
		args = append(args, "%"+filters.Term+"%")
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}
	if filters.City != "" {
		argCount++
		where += ` AND city = $` + strconv.Itoa(argCount)
		args = append(args, filters.City)
	}
	if filters.Country != "" {
		argCount++
		where += ` AND country = $` + strconv.Itoa(argCount)
		args = append(args, filters.Country)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + customerColumns + where + ` ORDER BY created_at DESC`
	if filters.PerPage > 0 {
		page := filters.Page
		if page <= 0 {
			page = 1
		}
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, (page-1)*filters.PerPage)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City, &c.Country, &c.PostalCode, &c.TaxID, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	var c Customer
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City, &c.Country, &c.PostalCode, &c.TaxID, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Customer) (Customer, error) {
	query := `INSERT INTO customers (first_name, last_name, email, phone, address, city, country, postal_code, tax_id, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.Country, c.PostalCode, c.TaxID, c.Notes, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Customer{}, shared.MapPgError(err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Customer) error {
	query := `UPDATE customers SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5, city = $6, country = $7, postal_code = $8, tax_id = $9, notes = $10, is_active = $11, updated_at = now() WHERE id = $12`
	tag, err := r.db.Exec(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.Country, c.PostalCode, c.TaxID, c.Notes, c.IsActive, id,
	)
	if err != nil {
		return shared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return shared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
