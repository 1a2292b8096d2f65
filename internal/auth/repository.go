package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginSession is a server-side record of an issued session cookie. It
// exists so active sessions can be audited and revoked with the account.
type LoginSession struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	IP        string
	UserAgent string
	CreatedAt time.Time
}

// SessionRepository persists login session records.
type SessionRepository interface {
	Register(ctx context.Context, s LoginSession) error
	Remove(ctx context.Context, id string) error
	RemoveExpired(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL session repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{db: pool}
}

func (r *sessionRepository) Register(ctx context.Context, s LoginSession) error {
	_, err := r.db.Exec(ctx, `INSERT INTO auth_sessions (id, user_id, expires_at, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET user_id = $2, expires_at = $3, ip = $4, user_agent = $5`,
		s.ID, s.UserID, s.ExpiresAt, s.IP, s.UserAgent)
	return err
}

func (r *sessionRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id)
	return err
}

func (r *sessionRepository) RemoveExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
