package customers

import (
	"context"

	"github.com/kontorapp/kontor/internal/shared"
)

// Service wraps customer business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns one customer by id.
func (s *Service) Get(ctx context.Context, id int64) (DTO, error) {
	if id <= 0 {
		return DTO{}, shared.ErrNotFound
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(c), nil
}

// List returns all customers, newest first.
func (s *Service) List(ctx context.Context) ([]DTO, error) {
	out, _, err := s.Search(ctx, SearchFilters{})
	return out, err
}

// Search filters customers; text matches are case-insensitive substrings
// over name, email, phone and tax id, combined with the discrete filters
// using logical AND.
func (s *Service) Search(ctx context.Context, filters SearchFilters) ([]DTO, shared.Pagination, error) {
	cs, total, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return toDTOs(cs), shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// Create stores a new customer. New customers are always active.
func (s *Service) Create(ctx context.Context, c Customer) (DTO, error) {
	if err := validate(c); err != nil {
		return DTO{}, err
	}
	c.IsActive = true
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(created), nil
}

// Update overwrites an existing customer, including its active flag.
func (s *Service) Update(ctx context.Context, id int64, c Customer) (DTO, error) {
	if id <= 0 {
		return DTO{}, shared.ErrNotFound
	}
	if err := validate(c); err != nil {
		return DTO{}, err
	}
	if err := s.repo.Update(ctx, id, c); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a customer unconditionally.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
