package users

import "time"

// User is an application account. Roles are stored in a join table and
// loaded alongside the row.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	FailedLogins int
	LockedUntil  *time.Time
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Locked reports whether the account is currently locked out.
func (u User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Input carries form fields for create and update operations. Password is
// empty on update unless the caller wants to change it.
type Input struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsActive  bool
	Roles     []string
}
