package products

import "time"

// DTO is the transfer shape handed to views. The stock flags and profit
// margin are computed here at mapping time and never persisted; the
// category name is denormalized from the read-time join.
type DTO struct {
	ID           int64
	Name         string
	Description  string
	SKU          string
	Price        float64
	Cost         *float64
	Type         Type
	TypeLabel    string
	Stock        int
	MinStock     *int
	IsActive     bool
	CategoryID   *int64
	CategoryName string
	IsLowStock   bool
	IsOutOfStock bool
	ProfitMargin *float64
	CreatedAt    time.Time
}

func toDTO(p Product, categoryName string) DTO {
	return DTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		SKU:          p.SKU,
		Price:        p.Price,
		Cost:         p.Cost,
		Type:         p.Type,
		TypeLabel:    p.Type.Label(),
		Stock:        p.Stock,
		MinStock:     p.MinStock,
		IsActive:     p.IsActive,
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		IsLowStock:   isLowStock(p),
		IsOutOfStock: isOutOfStock(p),
		ProfitMargin: profitMargin(p),
		CreatedAt:    p.CreatedAt,
	}
}

func isLowStock(p Product) bool {
	return p.MinStock != nil && p.Stock <= *p.MinStock
}

func isOutOfStock(p Product) bool {
	return p.Type == TypeProduct && p.Stock <= 0
}

func profitMargin(p Product) *float64 {
	if p.Cost == nil || *p.Cost <= 0 {
		return nil
	}
	margin := (p.Price - *p.Cost) / *p.Cost * 100
	return &margin
}
