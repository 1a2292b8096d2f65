package categories

import (
	"context"
	"fmt"

	"github.com/kontorapp/kontor/internal/shared"
)

// Service wraps category business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns one category with its referencing product count.
func (s *Service) Get(ctx context.Context, id int64) (DTO, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(c, count), nil
}

// List returns all categories ordered by name.
func (s *Service) List(ctx context.Context) ([]DTO, error) {
	return s.list(ctx, false)
}

// ListActive returns active categories, used to populate form selects.
func (s *Service) ListActive(ctx context.Context) ([]DTO, error) {
	return s.list(ctx, true)
}

func (s *Service) list(ctx context.Context, onlyActive bool) ([]DTO, error) {
	cs, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ProductCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DTO, len(cs))
	for i, c := range cs {
		out[i] = toDTO(c, counts[c.ID])
	}
	return out, nil
}

// Create stores a new category. New categories are always active.
func (s *Service) Create(ctx context.Context, c Category) (DTO, error) {
	if err := validate(c); err != nil {
		return DTO{}, err
	}
	c.IsActive = true
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(created, 0), nil
}

// Update overwrites an existing category, including its active flag.
func (s *Service) Update(ctx context.Context, id int64, c Category) (DTO, error) {
	if err := validate(c); err != nil {
		return DTO{}, err
	}
	if err := s.repo.Update(ctx, id, c); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a category. The referential guard lives here, not in the
// store: a category with associated products cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category has associated products", shared.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}
