package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kontorapp/kontor/internal/shared"
)

type stubRepo struct {
	invoices map[string]SalesMonth
	top      []CustomerTotal
	income   map[string]float64
	expenses map[string]float64
}

func (s *stubRepo) InvoicesByMonth(ctx context.Context, from, to time.Time) (map[string]SalesMonth, error) {
	return s.invoices, nil
}

func (s *stubRepo) TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerTotal, error) {
	return s.top, nil
}

func (s *stubRepo) IncomeByMonth(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	return s.income, nil
}

func (s *stubRepo) ExpensesByMonth(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	return s.expenses, nil
}

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestPeriodValidation(t *testing.T) {
	svc := NewService(&stubRepo{})
	ctx := context.Background()

	_, err := svc.Sales(ctx, d(2025, time.May, 1), d(2025, time.April, 1))
	require.True(t, shared.IsValidation(err))

	_, err = svc.Financial(ctx, time.Time{}, d(2025, time.April, 1))
	require.True(t, shared.IsValidation(err))
}

func TestSalesFillsEmptyMonths(t *testing.T) {
	repo := &stubRepo{
		invoices: map[string]SalesMonth{
			"2025-01": {Month: "2025-01", InvoiceCount: 2, InvoicedTotal: 500, PaidTotal: 300},
			"2025-03": {Month: "2025-03", InvoiceCount: 1, InvoicedTotal: 200, PaidTotal: 200},
		},
		top: []CustomerTotal{{CustomerID: 1, CustomerName: "Anna Smith", InvoiceCount: 3, Total: 700}},
	}
	svc := NewService(repo)

	report, err := svc.Sales(context.Background(), d(2025, time.January, 1), d(2025, time.March, 31))
	require.NoError(t, err)
	require.Len(t, report.Months, 3)
	require.Equal(t, "2025-02", report.Months[1].Month)
	require.Zero(t, report.Months[1].InvoiceCount)
	require.Equal(t, 3, report.InvoiceCount)
	require.Equal(t, 700.0, report.InvoicedTotal)
	require.Equal(t, 500.0, report.PaidTotal)
	require.Len(t, report.TopCustomers, 1)
}

func TestFinancialNetPerMonth(t *testing.T) {
	repo := &stubRepo{
		income:   map[string]float64{"2025-06": 1000, "2025-07": 400},
		expenses: map[string]float64{"2025-06": 250, "2025-08": 100},
	}
	svc := NewService(repo)

	report, err := svc.Financial(context.Background(), d(2025, time.June, 1), d(2025, time.August, 31))
	require.NoError(t, err)
	require.Len(t, report.Months, 3)
	require.Equal(t, 750.0, report.Months[0].Net)
	require.Equal(t, 400.0, report.Months[1].Net)
	require.Equal(t, -100.0, report.Months[2].Net)
	require.Equal(t, 1400.0, report.TotalIncome)
	require.Equal(t, 350.0, report.TotalExpenses)
	require.Equal(t, 1050.0, report.Net)
}

func TestSalesCSVFormat(t *testing.T) {
	report := SalesReport{
		Period: Period{From: d(2025, time.January, 1), To: d(2025, time.February, 28)},
		Months: []SalesMonth{
			{Month: "2025-01", InvoiceCount: 2, InvoicedTotal: 500, PaidTotal: 300},
			{Month: "2025-02"},
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteSalesCSV(&sb, report, d(2025, time.March, 1)))
	out := sb.String()

	require.True(t, strings.HasPrefix(out, "# Sales report\r\n"))
	require.Contains(t, out, "# Period: 2025-01-01 to 2025-02-28\r\n")
	require.Contains(t, out, "month,invoice_count,invoiced_total,paid_total\r\n")
	require.Contains(t, out, "2025-01,2,500.00,300.00\r\n")
	require.Contains(t, out, "2025-02,0,0.00,0.00\r\n")
}
