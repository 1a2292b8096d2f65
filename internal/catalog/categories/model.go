package categories

import "time"

// Category groups products. Icon and color are presentation hints.
type Category struct {
	ID          int64
	Name        string
	Description string
	Icon        string
	Color       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DTO is the view shape. ProductCount is a derived query result, the
// category never owns an in-memory product collection.
type DTO struct {
	ID           int64
	Name         string
	Description  string
	Icon         string
	Color        string
	IsActive     bool
	ProductCount int
	CreatedAt    time.Time
}

func toDTO(c Category, productCount int) DTO {
	return DTO{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Icon:         c.Icon,
		Color:        c.Color,
		IsActive:     c.IsActive,
		ProductCount: productCount,
		CreatedAt:    c.CreatedAt,
	}
}
