package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kontorapp/kontor/internal/shared"
)

type memoryRepo struct {
	rows   map[int64]User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]User)}
}

func (r *memoryRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.rows {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := r.rows[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, u User, roles []string) (User, error) {
	for _, existing := range r.rows {
		if existing.Email == u.Email {
			return User{}, shared.ErrConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.Roles = roles
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.rows[u.ID] = u
	return u, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, u User, roles []string) error {
	existing, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	if u.PasswordHash == "" {
		u.PasswordHash = existing.PasswordHash
	}
	u.ID = id
	u.Roles = roles
	u.CreatedAt = existing.CreatedAt
	r.rows[id] = u
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryRepo) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	u, ok := r.rows[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u.Roles, nil
}

func (r *memoryRepo) RecordLoginFailure(ctx context.Context, id int64, failures int, lockedUntil *time.Time) error {
	u, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.FailedLogins = failures
	u.LockedUntil = lockedUntil
	r.rows[id] = u
	return nil
}

func (r *memoryRepo) ResetLoginFailures(ctx context.Context, id int64) error {
	u, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.FailedLogins = 0
	u.LockedUntil = nil
	r.rows[id] = u
	return nil
}

func validInput() Input {
	return Input{
		Email:     "admin@example.com",
		Password:  "correct horse",
		FirstName: "Ada",
		LastName:  "Admin",
		Roles:     []string{"Admin"},
	}
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	dto, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.True(t, dto.IsActive)
	require.Equal(t, "Ada Admin", dto.FullName)

	stored := repo.rows[dto.ID]
	require.NotEqual(t, "correct horse", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	in := validInput()
	in.Email = "not-an-email"
	_, err := svc.Create(ctx, in)
	require.True(t, shared.IsValidation(err))

	in = validInput()
	in.Password = "short"
	_, err = svc.Create(ctx, in)
	require.True(t, shared.IsValidation(err))

	in = validInput()
	in.Password = ""
	_, err = svc.Create(ctx, in)
	require.True(t, shared.IsValidation(err))
}

func TestUpdateReplacesRoleSet(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	dto, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Password = ""
	in.IsActive = true
	in.Roles = []string{"Employee"}
	updated, err := svc.Update(ctx, dto.ID, in)
	require.NoError(t, err)
	require.Equal(t, []string{"Employee"}, updated.Roles)
}

func TestUpdateKeepsPasswordWhenEmpty(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	dto, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	originalHash := repo.rows[dto.ID].PasswordHash

	in := validInput()
	in.Password = ""
	in.IsActive = true
	_, err = svc.Update(ctx, dto.ID, in)
	require.NoError(t, err)
	require.Equal(t, originalHash, repo.rows[dto.ID].PasswordHash)
}

func TestDuplicateEmailConflicts(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validInput())
	require.ErrorIs(t, err, shared.ErrConflict)
}
