package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/users"
)

// Service authenticates accounts and tracks the lockout counter.
type Service struct {
	users       users.Repository
	sessions    SessionRepository
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
}

// NewService constructs a new Service.
func NewService(userRepo users.Repository, sessionRepo SessionRepository, maxAttempts int, lockout time.Duration) *Service {
	return &Service{
		users:       userRepo,
		sessions:    sessionRepo,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

// Authenticate verifies credentials. An inactive account fails exactly
// like a wrong password. Reaching the attempt limit locks the account for
// the configured window; a successful login clears the counter.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return users.User{}, shared.ErrInvalidCredentials
		}
		return users.User{}, err
	}

	now := s.now()
	if u.Locked(now) {
		return users.User{}, shared.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil || !u.IsActive {
		failures := u.FailedLogins + 1
		var lockedUntil *time.Time
		if failures >= s.maxAttempts {
			until := now.Add(s.lockout)
			lockedUntil = &until
			failures = 0
		}
		if recErr := s.users.RecordLoginFailure(ctx, u.ID, failures, lockedUntil); recErr != nil {
			return users.User{}, recErr
		}
		if lockedUntil != nil {
			return users.User{}, shared.ErrAccountLocked
		}
		return users.User{}, shared.ErrInvalidCredentials
	}

	if u.FailedLogins > 0 || u.LockedUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, u.ID); err != nil {
			return users.User{}, err
		}
	}
	return u, nil
}

// RegisterSession records an issued session cookie server-side.
func (s *Service) RegisterSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration, ip, userAgent string) error {
	return s.sessions.Register(ctx, LoginSession{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: s.now().Add(ttl),
		IP:        ip,
		UserAgent: userAgent,
	})
}

// RemoveSession drops the server-side session record on logout.
func (s *Service) RemoveSession(ctx context.Context, sessionID string) error {
	return s.sessions.Remove(ctx, sessionID)
}
