package invoices

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kontorapp/kontor/internal/shared"
)

type memoryRepo struct {
	invoices map[int64]Invoice
	lines    map[int64][]Line
	payments map[int64][]Payment
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices: make(map[int64]Invoice),
		lines:    make(map[int64][]Line),
		payments: make(map[int64][]Payment),
	}
}

func (r *memoryRepo) Search(ctx context.Context, filters SearchFilters) ([]Row, error) {
	var out []Row
	for _, inv := range r.invoices {
		if filters.Term != "" && !strings.Contains(strings.ToLower(inv.Number), strings.ToLower(filters.Term)) {
			continue
		}
		if filters.CustomerID != nil && inv.CustomerID != *filters.CustomerID {
			continue
		}
		if filters.Status != nil && inv.Status != *filters.Status {
			continue
		}
		var paid float64
		for _, p := range r.payments[inv.ID] {
			paid += p.Amount
		}
		out = append(out, Row{Invoice: inv, PaidAmount: paid})
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Detail, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return Detail{}, shared.ErrNotFound
	}
	return Detail{Invoice: inv, Lines: r.lines[id], Payments: r.payments[id]}, nil
}

func (r *memoryRepo) Create(ctx context.Context, inv Invoice, lines []Line) (Invoice, error) {
	r.nextID++
	inv.ID = r.nextID
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	r.invoices[inv.ID] = inv
	for i := range lines {
		lines[i].InvoiceID = inv.ID
	}
	r.lines[inv.ID] = lines
	return inv, nil
}

func (r *memoryRepo) NextSequence(ctx context.Context, prefix string) (int, error) {
	count := 0
	for _, inv := range r.invoices {
		if strings.HasPrefix(inv.Number, prefix) {
			count++
		}
	}
	return count + 1, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	r.invoices[id] = inv
	return nil
}

func (r *memoryRepo) AddPayment(ctx context.Context, p Payment, markPaid bool) (Payment, error) {
	if _, ok := r.invoices[p.InvoiceID]; !ok {
		return Payment{}, shared.ErrNotFound
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.payments[p.InvoiceID] = append(r.payments[p.InvoiceID], p)
	if markPaid {
		inv := r.invoices[p.InvoiceID]
		inv.Status = StatusPaid
		r.invoices[p.InvoiceID] = inv
	}
	return p, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	delete(r.lines, id)
	delete(r.payments, id)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newInvoice() (Invoice, []Line) {
	inv := Invoice{
		CustomerID: 1,
		IssueDate:  day(2025, time.June, 10),
		DueDate:    day(2025, time.July, 10),
	}
	lines := []Line{
		{Description: "Consulting", Quantity: 3, UnitPrice: 100},
		{Description: "Hosting", Quantity: 1, UnitPrice: 50},
	}
	return inv, lines
}

func TestCreateComputesTotalsAndNumber(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	inv, lines := newInvoice()
	dto, err := svc.Create(ctx, inv, lines)
	require.NoError(t, err)
	require.Equal(t, "INV-202506-0001", dto.Number)
	require.Equal(t, StatusDraft, dto.Status)
	require.Equal(t, 350.0, dto.Total)
	require.Len(t, dto.Lines, 2)
	require.Equal(t, 300.0, dto.Lines[0].Subtotal)

	inv2, lines2 := newInvoice()
	dto2, err := svc.Create(ctx, inv2, lines2)
	require.NoError(t, err)
	require.Equal(t, "INV-202506-0002", dto2.Number)
}

func TestCreateRequiresLines(t *testing.T) {
	svc := NewService(newMemoryRepo())
	inv, _ := newInvoice()

	_, err := svc.Create(context.Background(), inv, nil)
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(context.Background(), inv, []Line{{Description: "Free", Quantity: 0, UnitPrice: 10}})
	require.True(t, shared.IsValidation(err))
}

func TestStatusTransitionsAreForwardOnly(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	inv, lines := newInvoice()
	dto, err := svc.Create(ctx, inv, lines)
	require.NoError(t, err)

	// Draft cannot jump straight to paid.
	_, err = svc.UpdateStatus(ctx, dto.ID, StatusPaid)
	require.ErrorIs(t, err, ErrInvalidTransition)

	sent, err := svc.UpdateStatus(ctx, dto.ID, StatusSent)
	require.NoError(t, err)
	require.Equal(t, StatusSent, sent.Status)

	_, err = svc.UpdateStatus(ctx, dto.ID, StatusDraft)
	require.ErrorIs(t, err, ErrInvalidTransition)

	paid, err := svc.UpdateStatus(ctx, dto.ID, StatusPaid)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)

	_, err = svc.UpdateStatus(ctx, dto.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPaymentsOnlyOnSentInvoices(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	inv, lines := newInvoice()
	dto, err := svc.Create(ctx, inv, lines)
	require.NoError(t, err)

	payment := Payment{Amount: 100, PaymentDate: day(2025, time.June, 20)}
	_, err = svc.AddPayment(ctx, dto.ID, payment)
	require.ErrorIs(t, err, ErrPaymentNotAllowed)

	_, err = svc.UpdateStatus(ctx, dto.ID, StatusSent)
	require.NoError(t, err)

	after, err := svc.AddPayment(ctx, dto.ID, payment)
	require.NoError(t, err)
	require.Equal(t, StatusSent, after.Status)
	require.Equal(t, 100.0, after.PaidAmount)
	require.Equal(t, 250.0, after.BalanceDue)
}

func TestFullPaymentMarksInvoicePaid(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	inv, lines := newInvoice()
	dto, err := svc.Create(ctx, inv, lines)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, dto.ID, StatusSent)
	require.NoError(t, err)

	_, err = svc.AddPayment(ctx, dto.ID, Payment{Amount: 200, PaymentDate: day(2025, time.June, 20)})
	require.NoError(t, err)

	final, err := svc.AddPayment(ctx, dto.ID, Payment{Amount: 150, PaymentDate: day(2025, time.June, 25)})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, final.Status)
	require.Equal(t, 0.0, final.BalanceDue)
	require.Len(t, final.Payments, 2)
	for _, p := range final.Payments {
		require.NotEmpty(t, p.Reference)
	}
}

func TestOverdueDerivedAtRead(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return day(2025, time.August, 1) }
	ctx := context.Background()

	inv, lines := newInvoice()
	dto, err := svc.Create(ctx, inv, lines)
	require.NoError(t, err)
	require.False(t, dto.IsOverdue)

	sent, err := svc.UpdateStatus(ctx, dto.ID, StatusSent)
	require.NoError(t, err)
	require.True(t, sent.IsOverdue)

	paid, err := svc.AddPayment(ctx, dto.ID, Payment{Amount: 350, PaymentDate: day(2025, time.July, 1)})
	require.NoError(t, err)
	require.False(t, paid.IsOverdue)
}

func TestDeleteRemovesChildren(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	inv, lines := newInvoice()
	dto, err := svc.Create(ctx, inv, lines)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, dto.ID))
	require.Empty(t, repo.lines[dto.ID])
	require.ErrorIs(t, svc.Delete(ctx, dto.ID), shared.ErrNotFound)
}
