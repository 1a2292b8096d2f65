package products

import "time"

// Type discriminates stocked goods from services.
type Type string

const (
	TypeProduct Type = "product"
	TypeService Type = "service"
)

// Valid reports whether t is a known product type.
func (t Type) Valid() bool {
	return t == TypeProduct || t == TypeService
}

// Label returns the display name for the type.
func (t Type) Label() string {
	if t == TypeService {
		return "Service"
	}
	return "Product"
}

// Product represents a catalog item. Stock fields are meaningful only for
// TypeProduct; services carry no inventory.
type Product struct {
	ID          int64
	Name        string
	Description string
	SKU         string
	Price       float64
	Cost        *float64
	Type        Type
	Stock       int
	MinStock    *int
	IsActive    bool
	CategoryID  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchFilters narrows product listings; filters combine with logical AND.
type SearchFilters struct {
	Term       string
	Type       *Type
	CategoryID *int64
	IsActive   *bool
	LowStock   bool
}
