package expenses

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kontorapp/kontor/internal/shared"
)

type memoryRepo struct {
	rows   map[int64]Expense
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Expense)}
}

func (r *memoryRepo) Search(ctx context.Context, filters SearchFilters) ([]Row, error) {
	var out []Row
	for _, e := range r.rows {
		if filters.Term != "" {
			term := strings.ToLower(filters.Term)
			haystack := strings.ToLower(e.Description + " " + e.Vendor + " " + e.ReceiptNumber)
			if !strings.Contains(haystack, term) {
				continue
			}
		}
		if filters.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.From != nil && e.ExpenseDate.Before(*filters.From) {
			continue
		}
		if filters.To != nil && e.ExpenseDate.After(*filters.To) {
			continue
		}
		if filters.IsPaid != nil && e.IsPaid != *filters.IsPaid {
			continue
		}
		out = append(out, Row{Expense: e})
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Row, error) {
	e, ok := r.rows[id]
	if !ok {
		return Row{}, shared.ErrNotFound
	}
	return Row{Expense: e}, nil
}

func (r *memoryRepo) Create(ctx context.Context, e Expense) (Expense, error) {
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.rows[e.ID] = e
	return e, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, e Expense) error {
	existing, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	e.ID = id
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now()
	r.rows[id] = e
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type memoryCategoryRepo struct {
	rows     map[int64]Category
	expenses *memoryRepo
	nextID   int64
}

func newMemoryCategoryRepo(expenses *memoryRepo) *memoryCategoryRepo {
	return &memoryCategoryRepo{rows: make(map[int64]Category), expenses: expenses}
}

func (r *memoryCategoryRepo) List(ctx context.Context, onlyActive bool) ([]Category, error) {
	var out []Category
	for _, c := range r.rows {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryCategoryRepo) Get(ctx context.Context, id int64) (Category, error) {
	c, ok := r.rows[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryCategoryRepo) Create(ctx context.Context, c Category) (Category, error) {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.rows[c.ID] = c
	return c, nil
}

func (r *memoryCategoryRepo) Update(ctx context.Context, id int64, c Category) error {
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	r.rows[id] = c
	return nil
}

func (r *memoryCategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryCategoryRepo) CountExpenses(ctx context.Context, id int64) (int, error) {
	count := 0
	for _, e := range r.expenses.rows {
		if e.CategoryID != nil && *e.CategoryID == id {
			count++
		}
	}
	return count, nil
}

func (r *memoryCategoryRepo) ExpenseCounts(ctx context.Context) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, e := range r.expenses.rows {
		if e.CategoryID != nil {
			counts[*e.CategoryID]++
		}
	}
	return counts, nil
}

func newTestService() (*Service, *memoryRepo, *memoryCategoryRepo) {
	repo := newMemoryRepo()
	catRepo := newMemoryCategoryRepo(repo)
	return NewService(repo, catRepo), repo, catRepo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, Expense{Description: "Rent", Amount: 0, ExpenseDate: date(2025, time.March, 1)})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, Expense{Description: "Rent", Amount: -10, ExpenseDate: date(2025, time.March, 1)})
	require.True(t, shared.IsValidation(err))

	dto, err := svc.Create(ctx, Expense{Description: "Rent", Amount: 850, ExpenseDate: date(2025, time.March, 1)})
	require.NoError(t, err)
	require.Equal(t, 850.0, dto.Amount)
}

func TestSearchByDateRangeInclusive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		_, err := svc.Create(ctx, Expense{Description: "Daily", Amount: 5, ExpenseDate: date(2025, time.April, day)})
		require.NoError(t, err)
	}

	from := date(2025, time.April, 1)
	to := date(2025, time.April, 2)
	result, err := svc.Search(ctx, SearchFilters{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, result, 2)
}

func TestDeleteCategoryGuardedByExpenses(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, Category{Name: "Office"})
	require.NoError(t, err)
	require.True(t, cat.IsActive)

	_, err = svc.Create(ctx, Expense{Description: "Chairs", Amount: 120, ExpenseDate: date(2025, time.May, 10), CategoryID: &cat.ID})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, cat.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	empty, err := svc.CreateCategory(ctx, Category{Name: "Travel"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(ctx, empty.ID))
}
