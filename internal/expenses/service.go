package expenses

import (
	"context"
	"fmt"

	"github.com/kontorapp/kontor/internal/shared"
)

// Service wraps expense and expense-category business rules.
type Service struct {
	repo       Repository
	categories CategoryRepository
}

// NewService constructs a new Service.
func NewService(repo Repository, categories CategoryRepository) *Service {
	return &Service{repo: repo, categories: categories}
}

// Get returns one expense by id.
func (s *Service) Get(ctx context.Context, id int64) (DTO, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(row.Expense, row.CategoryName), nil
}

// List returns all expenses, newest date first.
func (s *Service) List(ctx context.Context) ([]DTO, error) {
	return s.Search(ctx, SearchFilters{})
}

// Search filters expenses.
func (s *Service) Search(ctx context.Context, filters SearchFilters) ([]DTO, error) {
	rows, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := make([]DTO, len(rows))
	for i, row := range rows {
		out[i] = toDTO(row.Expense, row.CategoryName)
	}
	return out, nil
}

// Create stores a new expense.
func (s *Service) Create(ctx context.Context, e Expense) (DTO, error) {
	if err := validateExpense(e); err != nil {
		return DTO{}, err
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, created.ID)
}

// Update overwrites an existing expense.
func (s *Service) Update(ctx context.Context, id int64, e Expense) (DTO, error) {
	if err := validateExpense(e); err != nil {
		return DTO{}, err
	}
	if err := s.repo.Update(ctx, id, e); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes an expense unconditionally.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// GetCategory returns one expense category with its usage count.
func (s *Service) GetCategory(ctx context.Context, id int64) (CategoryDTO, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return CategoryDTO{}, err
	}
	count, err := s.categories.CountExpenses(ctx, id)
	if err != nil {
		return CategoryDTO{}, err
	}
	return toCategoryDTO(c, count), nil
}

// ListCategories returns all expense categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	return s.listCategories(ctx, false)
}

// ListActiveCategories returns active categories for form selects.
func (s *Service) ListActiveCategories(ctx context.Context) ([]CategoryDTO, error) {
	return s.listCategories(ctx, true)
}

func (s *Service) listCategories(ctx context.Context, onlyActive bool) ([]CategoryDTO, error) {
	cs, err := s.categories.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	counts, err := s.categories.ExpenseCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, len(cs))
	for i, c := range cs {
		out[i] = toCategoryDTO(c, counts[c.ID])
	}
	return out, nil
}

// CreateCategory stores a new expense category. New categories are always active.
func (s *Service) CreateCategory(ctx context.Context, c Category) (CategoryDTO, error) {
	if err := validateCategory(c); err != nil {
		return CategoryDTO{}, err
	}
	c.IsActive = true
	created, err := s.categories.Create(ctx, c)
	if err != nil {
		return CategoryDTO{}, err
	}
	return toCategoryDTO(created, 0), nil
}

// UpdateCategory overwrites an existing expense category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, c Category) (CategoryDTO, error) {
	if err := validateCategory(c); err != nil {
		return CategoryDTO{}, err
	}
	if err := s.categories.Update(ctx, id, c); err != nil {
		return CategoryDTO{}, err
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category unless expenses still reference it.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	count, err := s.categories.CountExpenses(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category has associated expenses", shared.ErrConflict)
	}
	return s.categories.Delete(ctx, id)
}
