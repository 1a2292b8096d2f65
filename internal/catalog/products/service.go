package products

import (
	"context"
	"errors"
)

var (
	// ErrServiceStock is returned when adjusting stock on a service.
	ErrServiceStock = errors.New("products: services have no stock")
	// ErrNegativeStock is returned when an adjustment would drop stock below zero.
	ErrNegativeStock = errors.New("products: stock cannot become negative")
)

// Service wraps product business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id int64) (DTO, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(row.Product, row.CategoryName), nil
}

// List returns all products, newest first.
func (s *Service) List(ctx context.Context) ([]DTO, error) {
	return s.Search(ctx, SearchFilters{})
}

// Search filters products.
func (s *Service) Search(ctx context.Context, filters SearchFilters) ([]DTO, error) {
	rows, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := make([]DTO, len(rows))
	for i, row := range rows {
		out[i] = toDTO(row.Product, row.CategoryName)
	}
	return out, nil
}

// Create stores a new product. New products are always active and the
// submitted stock is clamped to zero or more.
func (s *Service) Create(ctx context.Context, p Product) (DTO, error) {
	if err := validate(p); err != nil {
		return DTO{}, err
	}
	p.IsActive = true
	if p.Stock < 0 {
		p.Stock = 0
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, created.ID)
}

// Update overwrites an existing product, including its active flag.
func (s *Service) Update(ctx context.Context, id int64, p Product) (DTO, error) {
	if err := validate(p); err != nil {
		return DTO{}, err
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	if err := s.repo.Update(ctx, id, p); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a product unconditionally.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AdjustStock adds a signed delta to the stored stock figure. Services
// carry no stock and an adjustment that would push stock negative is
// rejected before any write, leaving the row unchanged.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (DTO, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	if row.Product.Type == TypeService {
		return DTO{}, ErrServiceStock
	}
	newStock := row.Product.Stock + delta
	if newStock < 0 {
		return DTO{}, ErrNegativeStock
	}
	if err := s.repo.SetStock(ctx, id, newStock); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}
