package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kontorapp/kontor/internal/platform/db"
	"github.com/kontorapp/kontor/internal/shared"
)

// Repository defines persistence operations for users and their role set.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User, roles []string) (User, error)
	Update(ctx context.Context, id int64, u User, roles []string) error
	Delete(ctx context.Context, id int64) error
	RolesForUser(ctx context.Context, userID int64) ([]string, error)
	RecordLoginFailure(ctx context.Context, id int64, failures int, lockedUntil *time.Time) error
	ResetLoginFailures(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL user repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_active, failed_logins, locked_until, created_at, updated_at`

func scanUser(scan func(...any) error) (User, error) {
	var u User
	err := scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsActive,
		&u.FailedLogins, &u.LockedUntil, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roleRows, err := r.db.Query(ctx, `SELECT ur.user_id, r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id`)
	if err != nil {
		return nil, err
	}
	defer roleRows.Close()
	byUser := make(map[int64][]string)
	for roleRows.Next() {
		var userID int64
		var name string
		if err := roleRows.Scan(&userID, &name); err != nil {
			return nil, err
		}
		byUser[userID] = append(byUser[userID], name)
	}
	if err := roleRows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Roles = byUser[out[i].ID]
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Roles, err = r.RolesForUser(ctx, u.ID)
	return u, err
}

func (r *repository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Roles, err = r.RolesForUser(ctx, u.ID)
	return u, err
}

func (r *repository) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = $1 ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, u User, roles []string) (User, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO users (email, password_hash, first_name, last_name, is_active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsActive,
		).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return shared.MapPgError(err)
		}
		return assignRoles(ctx, tx, u.ID, roles)
	})
	if err != nil {
		return User{}, err
	}
	u.Roles = roles
	return u, nil
}

func (r *repository) Update(ctx context.Context, id int64, u User, roles []string) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `UPDATE users SET email = $1, first_name = $2, last_name = $3, is_active = $4, updated_at = now() WHERE id = $5`
		args := []any{u.Email, u.FirstName, u.LastName, u.IsActive, id}
		if u.PasswordHash != "" {
			query = `UPDATE users SET email = $1, first_name = $2, last_name = $3, is_active = $4, password_hash = $5, updated_at = now() WHERE id = $6`
			args = []any{u.Email, u.FirstName, u.LastName, u.IsActive, u.PasswordHash, id}
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return shared.MapPgError(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}

		// The role set is replaced wholesale, not diffed.
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		return assignRoles(ctx, tx, id, roles)
	})
}

func assignRoles(ctx context.Context, tx pgx.Tx, userID int64, roles []string) error {
	for _, name := range roles {
		tag, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) SELECT $1, id FROM roles WHERE name = $2`, userID, name)
		if err != nil {
			return shared.MapPgError(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.NewValidationError("roles", "unknown role "+name)
		}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM auth_sessions WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) RecordLoginFailure(ctx context.Context, id int64, failures int, lockedUntil *time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET failed_logins = $1, locked_until = $2, updated_at = now() WHERE id = $3`,
		failures, lockedUntil, id)
	return err
}

func (r *repository) ResetLoginFailures(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET failed_logins = 0, locked_until = NULL, updated_at = now() WHERE id = $1`, id)
	return err
}
