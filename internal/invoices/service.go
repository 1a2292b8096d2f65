package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTransition is returned for a status change the lifecycle
	// does not allow.
	ErrInvalidTransition = errors.New("invoices: invalid status transition")
	// ErrPaymentNotAllowed is returned when recording a payment against an
	// invoice that is not in the sent state.
	ErrPaymentNotAllowed = errors.New("invoices: payments require a sent invoice")
)

// Service wraps invoice business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns one invoice with its lines and payments.
func (s *Service) Get(ctx context.Context, id int64) (DTO, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	return toDTO(d.Invoice, d.CustomerName, d.Lines, d.Payments, s.now()), nil
}

// List returns all invoices, newest issue date first.
func (s *Service) List(ctx context.Context) ([]DTO, error) {
	return s.Search(ctx, SearchFilters{})
}

// Search filters invoices.
func (s *Service) Search(ctx context.Context, filters SearchFilters) ([]DTO, error) {
	rows, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]DTO, len(rows))
	for i, row := range rows {
		out[i] = toSummaryDTO(row.Invoice, row.CustomerName, row.PaidAmount, now)
	}
	return out, nil
}

// Create stores a new draft invoice with its lines in one transaction.
// The number is generated as a monthly sequence keyed on the issue date.
func (s *Service) Create(ctx context.Context, inv Invoice, lines []Line) (DTO, error) {
	if err := validateInvoice(inv, lines); err != nil {
		return DTO{}, err
	}

	inv.Status = StatusDraft
	inv.Total = 0
	for i := range lines {
		lines[i].Subtotal = float64(lines[i].Quantity) * lines[i].UnitPrice
		inv.Total += lines[i].Subtotal
	}

	prefix := "INV-" + inv.IssueDate.Format("200601") + "-"
	seq, err := s.repo.NextSequence(ctx, prefix)
	if err != nil {
		return DTO{}, err
	}
	inv.Number = fmt.Sprintf("%s%04d", prefix, seq)

	created, err := s.repo.Create(ctx, inv, lines)
	if err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, created.ID)
}

// UpdateStatus advances the invoice lifecycle. Only forward transitions
// are permitted.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next Status) (DTO, error) {
	if !next.Valid() {
		return DTO{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	if !d.Invoice.Status.CanTransition(next) {
		return DTO{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, d.Invoice.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}

// AddPayment appends a payment to a sent invoice. When the payment sum
// reaches the total the invoice is marked paid in the same transaction.
func (s *Service) AddPayment(ctx context.Context, id int64, p Payment) (DTO, error) {
	if err := validatePayment(p); err != nil {
		return DTO{}, err
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return DTO{}, err
	}
	if d.Invoice.Status != StatusSent {
		return DTO{}, ErrPaymentNotAllowed
	}

	paid := p.Amount
	for _, existing := range d.Payments {
		paid += existing.Amount
	}
	p.InvoiceID = id
	if p.Reference == "" {
		p.Reference = uuid.NewString()
	}

	if _, err := s.repo.AddPayment(ctx, p, paid >= d.Invoice.Total); err != nil {
		return DTO{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the invoice together with its lines and payments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
