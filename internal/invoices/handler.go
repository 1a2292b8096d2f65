package invoices

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/customers"
	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// PDFRenderer converts rendered HTML into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Handler wires HTTP endpoints for invoice pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	customers *customers.Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	pdf       PDFRenderer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, customerService *customers.Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, pdf PDFRenderer) *Handler {
	return &Handler{logger: logger, service: service, customers: customerService, templates: templates, csrf: csrf, sessions: sessions, pdf: pdf}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.form)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Get("/{id}/pdf", h.downloadPDF)
	r.Post("/{id}/status", h.updateStatus)
	r.Post("/{id}/payments", h.addPayment)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := SearchFilters{Term: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CustomerID = &id
		}
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		if status.Valid() {
			filters.Status = &status
		}
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filters.From = &from
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			filters.To = &to
		}
	}

	result, err := h.service.Search(r.Context(), filters)
	if err != nil {
		h.logger.Error("search invoices", slog.Any("error", err))
		http.Error(w, "Failed to load invoices", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/invoices/list.html", map[string]any{
		"Invoices": result,
		"Filters":  filters,
		"Statuses": []Status{StatusDraft, StatusSent, StatusPaid, StatusCancelled},
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Invoice not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/invoices/detail.html", map[string]any{
		"Invoice": invoice,
	}, http.StatusOK)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	custs, err := h.customers.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to load customers", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/invoices/form.html", map[string]any{
		"Errors":    map[string]string{},
		"Customers": custs,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	invoice, lines := invoiceFromForm(r)

	created, err := h.service.Create(r.Context(), invoice, lines)
	if err != nil {
		errs := map[string]string{}
		var ve *shared.ValidationError
		if errors.As(err, &ve) {
			errs[ve.Field] = ve.Message
		} else {
			h.logger.Error("create invoice", slog.Any("error", err))
			errs["general"] = shared.UserSafeMessage(err)
		}
		custs, custErr := h.customers.List(r.Context())
		if custErr != nil {
			custs = nil
		}
		h.render(w, r, "pages/invoices/form.html", map[string]any{
			"Errors":    errs,
			"Customers": custs,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(created.ID, 10), "success", "Invoice "+created.Number+" created")
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	next := Status(r.PostFormValue("status"))

	if _, err := h.service.UpdateStatus(r.Context(), id, next); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			http.Error(w, "Invoice not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(id, 10), "error", "That status change is not allowed")
		default:
			h.logger.Error("update invoice status", slog.Any("error", err))
			h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(id, 10), "error", shared.UserSafeMessage(err))
		}
		return
	}
	h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(id, 10), "success", "Invoice marked "+next.Label())
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	payment := Payment{
		Method:    r.PostFormValue("method"),
		Reference: r.PostFormValue("reference"),
		Notes:     r.PostFormValue("notes"),
	}
	payment.Amount, _ = strconv.ParseFloat(r.PostFormValue("amount"), 64)
	if raw := r.PostFormValue("payment_date"); raw != "" {
		if date, parseErr := time.Parse("2006-01-02", raw); parseErr == nil {
			payment.PaymentDate = date
		}
	}

	dto, err := h.service.AddPayment(r.Context(), id, payment)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			http.Error(w, "Invoice not found", http.StatusNotFound)
		case errors.Is(err, ErrPaymentNotAllowed):
			h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(id, 10), "error", "Payments can only be recorded on sent invoices")
		default:
			var ve *shared.ValidationError
			if errors.As(err, &ve) {
				h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(id, 10), "error", ve.Message)
				return
			}
			h.logger.Error("add payment", slog.Any("error", err))
			h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(id, 10), "error", shared.UserSafeMessage(err))
		}
		return
	}
	message := "Payment recorded"
	if dto.Status == StatusPaid {
		message = "Payment recorded, invoice fully paid"
	}
	h.redirectWithFlash(w, r, "/invoices/"+strconv.FormatInt(id, 10), "success", message)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/invoices", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/invoices", "success", "Invoice deleted")
}

func (h *Handler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Invoice not found", http.StatusNotFound)
		return
	}

	html, err := h.templates.RenderString("pages/invoices/pdf.html", view.TemplateData{
		Title: invoice.Number,
		Data:  map[string]any{"Invoice": invoice},
	})
	if err != nil {
		h.logger.Error("render invoice pdf html", slog.Any("error", err))
		http.Error(w, "Failed to build document", http.StatusInternalServerError)
		return
	}
	doc, err := h.pdf.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("convert invoice pdf", slog.Any("error", err))
		http.Error(w, "Document service unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Number+`.pdf"`)
	_, _ = w.Write(doc)
}

func invoiceFromForm(r *http.Request) (Invoice, []Line) {
	inv := Invoice{Notes: r.PostFormValue("notes")}
	inv.CustomerID, _ = strconv.ParseInt(r.PostFormValue("customer_id"), 10, 64)
	if raw := r.PostFormValue("issue_date"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			inv.IssueDate = date
		}
	}
	if raw := r.PostFormValue("due_date"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			inv.DueDate = date
		}
	}

	descriptions := r.PostForm["line_description"]
	quantities := r.PostForm["line_quantity"]
	prices := r.PostForm["line_unit_price"]
	var lines []Line
	for i := range descriptions {
		if descriptions[i] == "" {
			continue
		}
		line := Line{Description: descriptions[i]}
		if i < len(quantities) {
			line.Quantity, _ = strconv.Atoi(quantities[i])
		}
		if i < len(prices) {
			line.UnitPrice, _ = strconv.ParseFloat(prices[i], 64)
		}
		lines = append(lines, line)
	}
	return inv, lines
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Invoices",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
