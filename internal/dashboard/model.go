package dashboard

import "time"

// Overview is the aggregated home-page snapshot. It is recomputed on
// every request, never cached.
type Overview struct {
	TotalCustomers   int
	ActiveCustomers  int
	TotalProducts    int
	LowStockCount    int
	OutOfStockCount  int
	ActiveCategories int
	InventoryValue   float64
	TopCategories    []CategorySummary
	Activities       []Activity
}

// CategorySummary ranks a category by its active product count.
type CategorySummary struct {
	ID             int64
	Name           string
	Color          string
	ProductCount   int
	InventoryValue float64
}

// Activity is a recent-change feed entry.
type Activity struct {
	Kind       string
	Message    string
	OccurredAt time.Time
}
