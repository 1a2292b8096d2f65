package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	customers []Activity
	products  []Activity
}

func (s *stubRepo) CustomerCounts(ctx context.Context) (int, int, error) { return 12, 9, nil }
func (s *stubRepo) ProductCount(ctx context.Context) (int, error)        { return 30, nil }
func (s *stubRepo) LowStockCount(ctx context.Context) (int, error)       { return 4, nil }
func (s *stubRepo) OutOfStockCount(ctx context.Context) (int, error)     { return 2, nil }
func (s *stubRepo) ActiveCategoryCount(ctx context.Context) (int, error) { return 6, nil }
func (s *stubRepo) InventoryValue(ctx context.Context) (float64, error)  { return 1234.5, nil }

func (s *stubRepo) TopCategories(ctx context.Context, limit int) ([]CategorySummary, error) {
	return []CategorySummary{{ID: 1, Name: "Hardware", Color: "#336699", ProductCount: 8, InventoryValue: 900}}, nil
}

func (s *stubRepo) RecentCustomers(ctx context.Context, limit int) ([]Activity, error) {
	return s.customers, nil
}

func (s *stubRepo) RecentProducts(ctx context.Context, limit int) ([]Activity, error) {
	return s.products, nil
}

func at(min int) time.Time {
	return time.Date(2025, time.July, 1, 10, min, 0, 0, time.UTC)
}

func TestOverviewAggregates(t *testing.T) {
	repo := &stubRepo{
		customers: []Activity{
			{Kind: "customer", Message: "New customer: Anna Smith", OccurredAt: at(5)},
			{Kind: "customer", Message: "New customer: Bo Chen", OccurredAt: at(1)},
		},
		products: []Activity{
			{Kind: "product", Message: "New product: Widget", OccurredAt: at(3)},
		},
	}
	svc := NewService(repo)

	o, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, o.TotalCustomers)
	require.Equal(t, 9, o.ActiveCustomers)
	require.Equal(t, 30, o.TotalProducts)
	require.Equal(t, 4, o.LowStockCount)
	require.Equal(t, 2, o.OutOfStockCount)
	require.Equal(t, 6, o.ActiveCategories)
	require.Equal(t, 1234.5, o.InventoryValue)
	require.Len(t, o.TopCategories, 1)
}

func TestActivitiesMergedNewestFirst(t *testing.T) {
	repo := &stubRepo{
		customers: []Activity{
			{Kind: "customer", Message: "New customer: Anna Smith", OccurredAt: at(5)},
			{Kind: "customer", Message: "New customer: Bo Chen", OccurredAt: at(1)},
		},
		products: []Activity{
			{Kind: "product", Message: "New product: Widget", OccurredAt: at(3)},
			{Kind: "product", Message: "New product: Bolt", OccurredAt: at(7)},
		},
	}
	svc := NewService(repo)

	o, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, o.Activities, 4)
	require.Equal(t, "New product: Bolt", o.Activities[0].Message)
	require.Equal(t, "New customer: Anna Smith", o.Activities[1].Message)
	require.Equal(t, "New product: Widget", o.Activities[2].Message)
	require.Equal(t, "New customer: Bo Chen", o.Activities[3].Message)
}

func TestActivityFeedCapped(t *testing.T) {
	var many []Activity
	for i := 0; i < 8; i++ {
		many = append(many, Activity{Kind: "customer", Message: "New customer", OccurredAt: at(i)})
	}
	repo := &stubRepo{customers: many, products: many}
	svc := NewService(repo)

	o, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, o.Activities, 10)
}
