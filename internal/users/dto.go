package users

import "time"

// DTO is the user view shape. The password hash never leaves the package.
type DTO struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	FullName  string
	IsActive  bool
	IsLocked  bool
	Roles     []string
	CreatedAt time.Time
}

func toDTO(u User, now time.Time) DTO {
	return DTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FirstName + " " + u.LastName,
		IsActive:  u.IsActive,
		IsLocked:  u.Locked(now),
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
}
