package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/users"
)

type memoryUserRepo struct {
	rows map[int64]users.User
}

func (r *memoryUserRepo) List(ctx context.Context) ([]users.User, error) { return nil, nil }

func (r *memoryUserRepo) Get(ctx context.Context, id int64) (users.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, shared.ErrNotFound
}

func (r *memoryUserRepo) Create(ctx context.Context, u users.User, roles []string) (users.User, error) {
	return users.User{}, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, id int64, u users.User, roles []string) error {
	return nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id int64) error { return nil }

func (r *memoryUserRepo) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	return nil, nil
}

func (r *memoryUserRepo) RecordLoginFailure(ctx context.Context, id int64, failures int, lockedUntil *time.Time) error {
	u := r.rows[id]
	u.FailedLogins = failures
	u.LockedUntil = lockedUntil
	r.rows[id] = u
	return nil
}

func (r *memoryUserRepo) ResetLoginFailures(ctx context.Context, id int64) error {
	u := r.rows[id]
	u.FailedLogins = 0
	u.LockedUntil = nil
	r.rows[id] = u
	return nil
}

type memorySessionRepo struct {
	rows map[string]LoginSession
}

func (r *memorySessionRepo) Register(ctx context.Context, s LoginSession) error {
	r.rows[s.ID] = s
	return nil
}

func (r *memorySessionRepo) Remove(ctx context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

func (r *memorySessionRepo) RemoveExpired(ctx context.Context) (int64, error) { return 0, nil }

func newTestService(t *testing.T) (*Service, *memoryUserRepo, *memorySessionRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := &memoryUserRepo{rows: map[int64]users.User{
		1: {ID: 1, Email: "owner@example.com", PasswordHash: string(hash), IsActive: true, FirstName: "Olga"},
		2: {ID: 2, Email: "gone@example.com", PasswordHash: string(hash), IsActive: false},
	}}
	sessionRepo := &memorySessionRepo{rows: make(map[string]LoginSession)}
	return NewService(userRepo, sessionRepo, 5, 15*time.Minute), userRepo, sessionRepo
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.rows[1] = func(u users.User) users.User { u.FailedLogins = 3; return u }(repo.rows[1])

	u, err := svc.Authenticate(context.Background(), "owner@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, 0, repo.rows[1].FailedLogins)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "owner@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	require.Equal(t, 1, repo.rows[1].FailedLogins)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestInactiveAccountFailsLikeWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "gone@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLockoutAfterRepeatedFailures(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Authenticate(ctx, "owner@example.com", "wrong")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	}

	// Fifth failure trips the lock.
	_, err := svc.Authenticate(ctx, "owner@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrAccountLocked)
	require.NotNil(t, repo.rows[1].LockedUntil)

	// Even correct credentials are rejected while locked.
	_, err = svc.Authenticate(ctx, "owner@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, shared.ErrAccountLocked)
}

func TestLockExpires(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	repo.rows[1] = func(u users.User) users.User { u.LockedUntil = &past; return u }(repo.rows[1])

	u, err := svc.Authenticate(ctx, "owner@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Nil(t, repo.rows[u.ID].LockedUntil)
}

func TestSessionRegistry(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.RegisterSession(ctx, "sid-1", 1, time.Hour, "10.0.0.1", "test-agent"))
	require.Len(t, sessions.rows, 1)
	require.Equal(t, int64(1), sessions.rows["sid-1"].UserID)

	require.NoError(t, svc.RemoveSession(ctx, "sid-1"))
	require.Empty(t, sessions.rows)
}
