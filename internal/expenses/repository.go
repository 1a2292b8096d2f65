package expenses

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kontorapp/kontor/internal/shared"
)

// Row couples an expense with the category name from the read-time join.
type Row struct {
	Expense      Expense
	CategoryName string
}

// Repository defines persistence operations for expenses.
type Repository interface {
	Search(ctx context.Context, filters SearchFilters) ([]Row, error)
	Get(ctx context.Context, id int64) (Row, error)
	Create(ctx context.Context, e Expense) (Expense, error)
	Update(ctx context.Context, id int64, e Expense) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository defines persistence operations for expense categories.
type CategoryRepository interface {
	List(ctx context.Context, onlyActive bool) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, id int64, c Category) error
	Delete(ctx context.Context, id int64) error
	CountExpenses(ctx context.Context, id int64) (int, error)
	ExpenseCounts(ctx context.Context) (map[int64]int, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL expense repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const expenseSelect = `SELECT e.id, e.description, e.amount, e.expense_date, e.category_id, e.vendor, e.receipt_number, e.notes, e.is_paid, e.created_at, e.updated_at, COALESCE(c.name, '')
	FROM expenses e LEFT JOIN expense_categories c ON c.id = e.category_id`

func scanRow(scan func(...any) error) (Row, error) {
	var row Row
	err := scan(
		&row.Expense.ID, &row.Expense.Description, &row.Expense.Amount, &row.Expense.ExpenseDate,
		&row.Expense.CategoryID, &row.Expense.Vendor, &row.Expense.ReceiptNumber, &row.Expense.Notes,
		&row.Expense.IsPaid, &row.Expense.CreatedAt, &row.Expense.UpdatedAt, &row.CategoryName,
	)
	return row, err
}

func (r *repository) Search(ctx context.Context, filters SearchFilters) ([]Row, error) {
	query := expenseSelect + ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Term != "" {
		argCount++
		p := `$` + strconv.Itoa(argCount)
		query += ` AND (e.description ILIKE ` + p + ` OR e.vendor ILIKE ` + p + ` OR e.receipt_number ILIKE ` + p + `)`
		args = append(args, "%"+filters.Term+"%")
	}
	if filters.CategoryID != nil {
		argCount++
		query += ` AND e.category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}
	if filters.From != nil {
		argCount++
		query += ` AND e.expense_date >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		argCount++
		query += ` AND e.expense_date <= $` + strconv.Itoa(argCount)
		args = append(args, *filters.To)
	}
	if filters.IsPaid != nil {
		argCount++
		query += ` AND e.is_paid = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsPaid)
	}

	query += ` ORDER BY e.expense_date DESC, e.id DESC`

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
	row, err := scanRow(r.db.QueryRow(ctx, expenseSelect+` WHERE e.id = $1`, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, shared.ErrNotFound
	}
	return row, err
}

func (r *repository) Create(ctx context.Context, e Expense) (Expense, error) {
	query := `INSERT INTO expenses (description, amount, expense_date, category_id, vendor, receipt_number, notes, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		e.Description, e.Amount, e.ExpenseDate, e.CategoryID, e.Vendor, e.ReceiptNumber, e.Notes, e.IsPaid,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Expense{}, shared.MapPgError(err)
	}
	return e, nil
}

func (r *repository) Update(ctx context.Context, id int64, e Expense) error {
	query := `UPDATE expenses SET description = $1, amount = $2, expense_date = $3, category_id = $4, vendor = $5, receipt_number = $6, notes = $7, is_paid = $8, updated_at = now() WHERE id = $9`
	tag, err := r.db.Exec(ctx, query,
		e.Description, e.Amount, e.ExpenseDate, e.CategoryID, e.Vendor, e.ReceiptNumber, e.Notes, e.IsPaid, id,
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
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return shared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type categoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository constructs a PostgreSQL expense-category repository.
func NewCategoryRepository(db *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, description, is_active, created_at, updated_at`

func (r *categoryRepository) List(ctx context.Context, onlyActive bool) ([]Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM expense_categories`
	if onlyActive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoryRepository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM expense_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

func (r *categoryRepository) Create(ctx context.Context, c Category) (Category, error) {
	query := `INSERT INTO expense_categories (name, description, is_active) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, c.Name, c.Description, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, shared.MapPgError(err)
	}
	return c, nil
}

func (r *categoryRepository) Update(ctx context.Context, id int64, c Category) error {
	query := `UPDATE expense_categories SET name = $1, description = $2, is_active = $3, updated_at = now() WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, c.Name, c.Description, c.IsActive, id)
	if err != nil {
		return shared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expense_categories WHERE id = $1`, id)
	if err != nil {
		return shared.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) CountExpenses(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE category_id = $1`, id).Scan(&count)
	return count, err
}

func (r *categoryRepository) ExpenseCounts(ctx context.Context) (map[int64]int, error) {
	rows, err := r.db.Query(ctx, `SELECT category_id, COUNT(*) FROM expenses WHERE category_id IS NOT NULL GROUP BY category_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}
