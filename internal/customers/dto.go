package customers

import "time"

// DTO is the transfer shape handed to views. FullName is derived,
// never stored.
type DTO struct {
	ID         int64
	FirstName  string
	LastName   string
	FullName   string
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
}

func toDTO(c Customer) DTO {
	return DTO{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FirstName + " " + c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Country:    c.Country,
		PostalCode: c.PostalCode,
		TaxID:      c.TaxID,
		Notes:      c.Notes,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
	}
}

func toDTOs(cs []Customer) []DTO {
	out := make([]DTO, len(cs))
	for i, c := range cs {
		out[i] = toDTO(c)
	}
	return out
}
