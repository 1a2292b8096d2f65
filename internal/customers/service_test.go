package customers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kontorapp/kontor/internal/shared"
)

type memoryRepo struct {
	rows   map[int64]Customer
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Customer)}
}

func (r *memoryRepo) Search(ctx context.Context, filters SearchFilters) ([]Customer, int, error) {
	var out []Customer
	for _, c := range r.rows {
		if filters.Term != "" {
			term := strings.ToLower(filters.Term)
			haystack := strings.ToLower(c.FirstName + " " + c.LastName + " " + c.Email + " " + c.Phone + " " + c.TaxID)
			if !strings.Contains(haystack, term) {
				continue
			}
		}
		if filters.IsActive != nil && c.IsActive != *filters.IsActive {
			continue
		}
		if filters.City != "" && c.City != filters.City {
			continue
		}
		if filters.Country != "" && c.Country != filters.Country {
			continue
		}
		out = append(out, c)
	}
	total := len(out)
	if filters.PerPage > 0 {
		page := filters.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filters.PerPage
		if start > len(out) {
			start = len(out)
		}
		end := start + filters.PerPage
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) Create(ctx context.Context, c Customer) (Customer, error) {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.rows[c.ID] = c
	return c, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, c Customer) error {
	existing, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	r.rows[id] = c
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func TestCreateRequiresNames(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Customer{LastName: "Smith", Email: "a@b.c"})
	require.Error(t, err)
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, Customer{FirstName: "Anna", Email: "a@b.c"})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, Customer{FirstName: "Anna", LastName: "Smith"})
	require.True(t, shared.IsValidation(err))

	dto, err := svc.Create(ctx, Customer{FirstName: "Anna", LastName: "Smith", Email: "anna@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Anna Smith", dto.FullName)
	require.True(t, dto.IsActive)
}

func TestSearchCombinesFiltersWithAnd(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Customer{FirstName: "John", LastName: "Smith", Email: "john@acme.io", City: "Madrid"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Customer{FirstName: "Jane", LastName: "Smithers", Email: "jane@acme.io", City: "Lyon"})
	require.NoError(t, err)
	inactive, err := svc.Create(ctx, Customer{FirstName: "Sam", LastName: "Smith", Email: "sam@acme.io", City: "Madrid"})
	require.NoError(t, err)

	// Deactivate one record through update.
	c := repo.rows[inactive.ID]
	c.IsActive = false
	repo.rows[inactive.ID] = c

	active := true
	result, _, err := svc.Search(ctx, SearchFilters{Term: "SMITH", IsActive: &active, City: "Madrid"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "john@acme.io", result[0].Email)
}

func TestSearchPaginates(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	for _, name := range []string{"Ada", "Ben", "Cleo", "Dan", "Eva"} {
		_, err := svc.Create(ctx, Customer{FirstName: name, LastName: "Stone", Email: strings.ToLower(name) + "@example.com"})
		require.NoError(t, err)
	}

	result, pagination, err := svc.Search(ctx, SearchFilters{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, 5, pagination.Total)
	require.Equal(t, 3, pagination.TotalPages)
	require.Equal(t, 2, pagination.Page)
}

func TestDeleteMissingCustomer(t *testing.T) {
	svc := NewService(newMemoryRepo())
	require.ErrorIs(t, svc.Delete(context.Background(), 99), shared.ErrNotFound)
}
