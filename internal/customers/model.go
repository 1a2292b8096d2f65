package customers

import "time"

// Customer represents a customer record.
type Customer struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	Country    string
	PostalCode string
	TaxID      string
	Notes      string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SearchFilters narrows customer listings. Zero value means "list all".
// Text term and the discrete filters combine with logical AND.
type SearchFilters struct {
	Term     string
	IsActive *bool
	City     string
	Country  string
	Page     int
	PerPage  int
}
