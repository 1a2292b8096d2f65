package dashboard

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

const (
	topCategoryLimit  = 5
	recentEntityLimit = 3
	activityFeedLimit = 10
)

// Service assembles the overview from concurrent aggregate queries.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Overview runs the aggregate queries concurrently and merges the
// activity feed, newest first.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	var recentCustomers, recentProducts []Activity

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		o.TotalCustomers, o.ActiveCustomers, err = s.repo.CustomerCounts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		o.TotalProducts, err = s.repo.ProductCount(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		o.LowStockCount, err = s.repo.LowStockCount(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		o.OutOfStockCount, err = s.repo.OutOfStockCount(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		o.ActiveCategories, err = s.repo.ActiveCategoryCount(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		o.InventoryValue, err = s.repo.InventoryValue(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		o.TopCategories, err = s.repo.TopCategories(ctx, topCategoryLimit)
		return err
	})
	g.Go(func() error {
		var err error
		recentCustomers, err = s.repo.RecentCustomers(ctx, recentEntityLimit)
		return err
	})
	g.Go(func() error {
		var err error
		recentProducts, err = s.repo.RecentProducts(ctx, recentEntityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	o.Activities = mergeActivities(recentCustomers, recentProducts, activityFeedLimit)
	return o, nil
}

func mergeActivities(a, b []Activity, limit int) []Activity {
	merged := make([]Activity, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OccurredAt.After(merged[j].OccurredAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
