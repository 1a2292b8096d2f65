package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository exposes the aggregate queries behind the overview. Each
// method maps to one query so the service can fan them out.
type Repository interface {
	CustomerCounts(ctx context.Context) (total int, active int, err error)
	ProductCount(ctx context.Context) (int, error)
	LowStockCount(ctx context.Context) (int, error)
	OutOfStockCount(ctx context.Context) (int, error)
	ActiveCategoryCount(ctx context.Context) (int, error)
	InventoryValue(ctx context.Context) (float64, error)
	TopCategories(ctx context.Context, limit int) ([]CategorySummary, error)
	RecentCustomers(ctx context.Context, limit int) ([]Activity, error)
	RecentProducts(ctx context.Context, limit int) ([]Activity, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL dashboard repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) CustomerCounts(ctx context.Context) (int, int, error) {
	var total, active int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM customers`).Scan(&total, &active)
	return total, active, err
}

func (r *repository) ProductCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// Low stock excludes rows that are already out of stock.
func (r *repository) LowStockCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products
		 WHERE type = 'product' AND min_stock IS NOT NULL AND stock > 0 AND stock <= min_stock`).Scan(&count)
	return count, err
}

func (r *repository) OutOfStockCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE type = 'product' AND stock <= 0`).Scan(&count)
	return count, err
}

func (r *repository) ActiveCategoryCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE is_active`).Scan(&count)
	return count, err
}

func (r *repository) InventoryValue(ctx context.Context) (float64, error) {
	var value float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(price * stock), 0) FROM products WHERE is_active AND type = 'product'`).Scan(&value)
	return value, err
}

func (r *repository) TopCategories(ctx context.Context, limit int) ([]CategorySummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, c.color,
			COUNT(p.id) FILTER (WHERE p.is_active),
			COALESCE(SUM(p.price * p.stock) FILTER (WHERE p.is_active AND p.type = 'product'), 0)
		 FROM categories c
		 LEFT JOIN products p ON p.category_id = c.id
		 WHERE c.is_active
		 GROUP BY c.id, c.name, c.color
		 ORDER BY COUNT(p.id) FILTER (WHERE p.is_active) DESC, c.name
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategorySummary
	for rows.Next() {
		var s CategorySummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &s.ProductCount, &s.InventoryValue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) RecentCustomers(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT first_name || ' ' || last_name, created_at FROM customers ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var name string
		if err := rows.Scan(&name, &a.OccurredAt); err != nil {
			return nil, err
		}
		a.Kind = "customer"
		a.Message = "New customer: " + name
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) RecentProducts(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, created_at FROM products ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var name string
		if err := rows.Scan(&name, &a.OccurredAt); err != nil {
			return nil, err
		}
		a.Kind = "product"
		a.Message = "New product: " + name
		out = append(out, a)
	}
	return out, rows.Err()
}
