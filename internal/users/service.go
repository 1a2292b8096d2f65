package users

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Service wraps user administration rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns one user by id.
func (s *Service) Get(ctx context.Context, id int64) (DTO, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(u, s.now()), nil
}

// List returns all users ordered by email.
func (s *Service) List(ctx context.Context) ([]DTO, error) {
	us, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]DTO, len(us))
	for i, u := range us {
		out[i] = toDTO(u, now)
	}
	return out, nil
}

// Create stores a new account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, in Input) (DTO, error) {
	if err := validateInput(in, true); err != nil {
		return DTO{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return DTO{}, err
	}
	u := User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, u, in.Roles)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(created, s.now()), nil
}

// Update overwrites the account details and replaces the role set in one
// transaction. An empty password keeps the current hash.
func (s *Service) Update(ctx context.Context, id int64, in Input) (DTO, error) {
	if err := validateInput(in, false); err != nil {
		return DTO{}, err
	}
	u := User{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  in.IsActive,
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return DTO{}, err
		}
		u.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, id, u, in.Roles); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the account with its role links and sessions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
