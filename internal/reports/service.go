package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kontorapp/kontor/internal/shared"
)

const topCustomerLimit = 5

// Service builds the sales and financial reports.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validPeriod(from, to time.Time) (Period, error) {
	if from.IsZero() || to.IsZero() {
		return Period{}, shared.NewValidationError("period", "both dates are required")
	}
	if from.After(to) {
		return Period{}, shared.NewValidationError("period", "start date must not be after end date")
	}
	return Period{From: from, To: to}, nil
}

// Sales builds the sales report over the inclusive window. Every month in
// the window appears in the output even when it has no invoices.
func (s *Service) Sales(ctx context.Context, from, to time.Time) (SalesReport, error) {
	period, err := validPeriod(from, to)
	if err != nil {
		return SalesReport{}, err
	}

	var byMonth map[string]SalesMonth
	var top []CustomerTotal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byMonth, err = s.repo.InvoicesByMonth(gctx, period.From, period.To)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.repo.TopCustomers(gctx, period.From, period.To, topCustomerLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{Period: period, TopCustomers: top}
	for _, month := range period.marshalMonths() {
		bucket := byMonth[month]
		bucket.Month = month
		report.Months = append(report.Months, bucket)
		report.InvoiceCount += bucket.InvoiceCount
		report.InvoicedTotal += bucket.InvoicedTotal
		report.PaidTotal += bucket.PaidTotal
	}
	return report, nil
}

// Financial builds the income-versus-expenses report over the inclusive
// window, one bucket per month.
func (s *Service) Financial(ctx context.Context, from, to time.Time) (FinancialReport, error) {
	period, err := validPeriod(from, to)
	if err != nil {
		return FinancialReport{}, err
	}

	var income, expenses map[string]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.repo.IncomeByMonth(gctx, period.From, period.To)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.repo.ExpensesByMonth(gctx, period.From, period.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return FinancialReport{}, err
	}

	report := FinancialReport{Period: period}
	for _, month := range period.marshalMonths() {
		bucket := FinancialMonth{
			Month:    month,
			Income:   income[month],
			Expenses: expenses[month],
		}
		bucket.Net = bucket.Income - bucket.Expenses
		report.Months = append(report.Months, bucket)
		report.TotalIncome += bucket.Income
		report.TotalExpenses += bucket.Expenses
	}
	report.Net = report.TotalIncome - report.TotalExpenses
	return report, nil
}
