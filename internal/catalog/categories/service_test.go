package categories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kontorapp/kontor/internal/shared"
)

type memoryRepo struct {
	rows     map[int64]Category
	products map[int64]int
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Category), products: make(map[int64]int)}
}

func (r *memoryRepo) List(ctx context.Context, onlyActive bool) ([]Category, error) {
	var out []Category
	for _, c := range r.rows {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Category, error) {
	c, ok := r.rows[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) Create(ctx context.Context, c Category) (Category, error) {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	r.rows[c.ID] = c
	return c, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, c Category) error {
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
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

func (r *memoryRepo) CountProducts(ctx context.Context, id int64) (int, error) {
	return r.products[id], nil
}

func (r *memoryRepo) ProductCounts(ctx context.Context) (map[int64]int, error) {
	return r.products, nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Category{Icon: "bi-box"})
	require.True(t, shared.IsValidation(err))
}

func TestCreateForcesActive(t *testing.T) {
	svc := NewService(newMemoryRepo())
	dto, err := svc.Create(context.Background(), Category{Name: "Tools", IsActive: false})
	require.NoError(t, err)
	require.True(t, dto.IsActive)
}

func TestDeleteGuardedByProducts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	dto, err := svc.Create(ctx, Category{Name: "Hardware"})
	require.NoError(t, err)

	repo.products[dto.ID] = 3
	err = svc.Delete(ctx, dto.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Get(ctx, dto.ID)
	require.NoError(t, err)

	repo.products[dto.ID] = 0
	require.NoError(t, svc.Delete(ctx, dto.ID))
	_, err = svc.Get(ctx, dto.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
