package products

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kontorapp/kontor/internal/shared"
)

type memoryRepo struct {
	rows   map[int64]Product
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Product)}
}

func (r *memoryRepo) Search(ctx context.Context, filters SearchFilters) ([]Row, error) {
	var out []Row
	for _, p := range r.rows {
		if filters.Term != "" {
			term := strings.ToLower(filters.Term)
			haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.SKU)
			if !strings.Contains(haystack, term) {
				continue
			}
		}
		if filters.Type != nil && p.Type != *filters.Type {
			continue
		}
		if filters.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.IsActive != nil && p.IsActive != *filters.IsActive {
			continue
		}
		if filters.LowStock {
			if p.Type != TypeProduct || p.MinStock == nil || p.Stock > *p.MinStock {
				continue
			}
		}
		out = append(out, Row{Product: p})
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Row, error) {
	p, ok := r.rows[id]
	if !ok {
		return Row{}, shared.ErrNotFound
	}
	return Row{Product: p}, nil
}

func (r *memoryRepo) Create(ctx context.Context, p Product) (Product, error) {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.rows[p.ID] = p
	return p, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, p Product) error {
	existing, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	r.rows[id] = p
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryRepo) SetStock(ctx context.Context, id int64, stock int) error {
	p, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Stock = stock
	r.rows[id] = p
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestCreateValidatesAndClampsStock(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Type: TypeProduct, Price: 10})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, Product{Name: "Widget", Type: "gadget", Price: 10})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, Product{Name: "Widget", Type: TypeProduct, Price: -1})
	require.True(t, shared.IsValidation(err))

	dto, err := svc.Create(ctx, Product{Name: "Widget", Type: TypeProduct, Price: 10, Stock: -4})
	require.NoError(t, err)
	require.True(t, dto.IsActive)
	require.Equal(t, 0, dto.Stock)
}

func TestStockFlags(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	low, err := svc.Create(ctx, Product{Name: "Bolt", Type: TypeProduct, Price: 1, Stock: 5, MinStock: intPtr(10)})
	require.NoError(t, err)
	require.True(t, low.IsLowStock)
	require.False(t, low.IsOutOfStock)

	out, err := svc.Create(ctx, Product{Name: "Nut", Type: TypeProduct, Price: 1, Stock: 0})
	require.NoError(t, err)
	require.True(t, out.IsOutOfStock)
	require.False(t, out.IsLowStock)

	service, err := svc.Create(ctx, Product{Name: "Consulting", Type: TypeService, Price: 100})
	require.NoError(t, err)
	require.False(t, service.IsOutOfStock)
	require.False(t, service.IsLowStock)
}

func TestProfitMargin(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	dto, err := svc.Create(ctx, Product{Name: "Widget", Type: TypeProduct, Price: 150, Cost: floatPtr(100)})
	require.NoError(t, err)
	require.NotNil(t, dto.ProfitMargin)
	require.InDelta(t, 50.0, *dto.ProfitMargin, 0.0001)

	noCost, err := svc.Create(ctx, Product{Name: "Mystery", Type: TypeProduct, Price: 150})
	require.NoError(t, err)
	require.Nil(t, noCost.ProfitMargin)

	freeCost, err := svc.Create(ctx, Product{Name: "Freebie", Type: TypeProduct, Price: 150, Cost: floatPtr(0)})
	require.NoError(t, err)
	require.Nil(t, freeCost.ProfitMargin)
}

func TestAdjustStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	widget, err := svc.Create(ctx, Product{Name: "Widget", Type: TypeProduct, Price: 10, Stock: 5})
	require.NoError(t, err)

	dto, err := svc.AdjustStock(ctx, widget.ID, -3)
	require.NoError(t, err)
	require.Equal(t, 2, dto.Stock)

	_, err = svc.AdjustStock(ctx, widget.ID, -5)
	require.ErrorIs(t, err, ErrNegativeStock)
	require.Equal(t, 2, repo.rows[widget.ID].Stock)

	consulting, err := svc.Create(ctx, Product{Name: "Consulting", Type: TypeService, Price: 100})
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, consulting.ID, 1)
	require.ErrorIs(t, err, ErrServiceStock)

	_, err = svc.AdjustStock(ctx, 999, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLowStockFilterExcludesServices(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: "Bolt", Type: TypeProduct, Price: 1, Stock: 2, MinStock: intPtr(5)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Product{Name: "Plenty", Type: TypeProduct, Price: 1, Stock: 50, MinStock: intPtr(5)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Product{Name: "Consulting", Type: TypeService, Price: 100, MinStock: intPtr(5)})
	require.NoError(t, err)

	result, err := svc.Search(ctx, SearchFilters{LowStock: true})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "Bolt", result[0].Name)
}
