package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kontorapp/kontor/internal/shared"
)

// Row couples a product with the denormalized category name from the
// read-time join. A missing category yields an empty name, not an error.
type Row struct {
	Product      Product
	CategoryName string
}

// Repository defines persistence operations for products.
type Repository interface {
	Search(ctx context.Context, filters SearchFilters) ([]Row, error)
	Get(ctx context.Context, id int64) (Row, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int64, p Product) error
	Delete(ctx context.Context, id int64) error
	SetStock(ctx context.Context, id int64, stock int) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productSelect = `SELECT p.id, p.name, p.description, p.sku, p.price, p.cost, p.type, p.stock, p.min_stock, p.is_active, p.category_id, p.created_at, p.updated_at, COALESCE(c.name, '')
	FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func scanRow(scan func(...any) error) (Row, error) {
	var row Row
	err := scan(
		&row.Product.ID, &row.Product.Name, &row.Product.Description, &row.Product.SKU,
		&row.Product.Price, &row.Product.Cost, &row.Product.Type, &row.Product.Stock,
		&row.Product.MinStock, &row.Product.IsActive, &row.Product.CategoryID,
		&row.Product.CreatedAt, &row.Product.UpdatedAt, &row.CategoryName,
	)
	return row, err
}

func (r *repository) Search(ctx context.Context, filters SearchFilters) ([]Row, error) {
	query := productSelect + ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Term != "" {
		argCount++
		p := `$` + strconv.Itoa(argCount)
		query += ` AND (p.name ILIKE ` + p + ` OR p.description ILIKE ` + p + ` OR p.sku ILIKE ` + p + `)`
		args = append(args, "%"+filters.Term+"%")
	}
	if filters.Type != nil {
		argCount++
		query += ` AND p.type = $` + strconv.Itoa(argCount)
		args = append(args, string(*filters.Type))
	}
	if filters.CategoryID != nil {
		argCount++
		query += ` AND p.category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}
	if filters.IsActive != nil {
		argCount++
		query += ` AND p.is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}
	if filters.LowStock {
		query += ` AND p.type = 'product' AND p.min_stock IS NOT NULL AND p.stock <= p.min_stock`
	}

	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Row, error) {
	row, err := scanRow(r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, shared.ErrNotFound
	}
	return row, err
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	query := `INSERT INTO products (name, description, sku, price, cost, type, stock, min_stock, is_active, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Description, p.SKU, p.Price, p.Cost, string(p.Type), p.Stock, p.MinStock, p.IsActive, p.CategoryID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, shared.MapPgError(err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Product) error {
	query := `UPDATE products SET name = $1, description = $2, sku = $3, price = $4, cost = $5, type = $6, stock = $7, min_stock = $8, is_active = $9, category_id = $10, updated_at = now() WHERE id = $11`
	tag, err := r.db.Exec(ctx, query,
		p.Name, p.Description, p.SKU, p.Price, p.Cost, string(p.Type), p.Stock, p.MinStock, p.IsActive, p.CategoryID, id,
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
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return shared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetStock(ctx context.Context, id int64, stock int) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET stock = $1, updated_at = now() WHERE id = $2`, stock, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
