package customers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// Handler wires HTTP endpoints for customer pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.form)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}/edit", h.update)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := SearchFilters{
		Term:    r.URL.Query().Get("search"),
		City:    r.URL.Query().Get("city"),
		Country: r.URL.Query().Get("country"),
		PerPage: 20,
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		isActive := raw == "true"
		filters.IsActive = &isActive
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		filters.Page = page
	}

	result, pagination, err := h.service.Search(r.Context(), filters)
	if err != nil {
		h.logger.Error("search customers", slog.Any("error", err))
		http.Error(w, "Failed to load customers", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/customers/list.html", map[string]any{
		"Customers":  result,
		"Filters":    filters,
		"Pagination": pagination,
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/customers/detail.html", map[string]any{
		"Customer": customer,
	}, http.StatusOK)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/customers/form.html", map[string]any{
		"Errors":   map[string]string{},
		"Customer": nil,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	customer := customerFromForm(r)

	created, err := h.service.Create(r.Context(), customer)
	if err != nil {
		h.renderFormError(w, r, customer, 0, err)
		return
	}
	h.redirectWithFlash(w, r, "/customers/"+strconv.FormatInt(created.ID, 10), "success", "Customer created")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/customers/form.html", map[string]any{
		"Errors":   map[string]string{},
		"Customer": customer,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	customer := customerFromForm(r)
	customer.IsActive = r.PostFormValue("is_active") == "on"

	if _, err := h.service.Update(r.Context(), id, customer); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Customer not found", http.StatusNotFound)
			return
		}
		h.renderFormError(w, r, customer, id, err)
		return
	}
	h.redirectWithFlash(w, r, "/customers/"+strconv.FormatInt(id, 10), "success", "Customer updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/customers", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/customers", "success", "Customer deleted")
}

func customerFromForm(r *http.Request) Customer {
	return Customer{
		FirstName:  r.PostFormValue("first_name"),
		LastName:   r.PostFormValue("last_name"),
		Email:      r.PostFormValue("email"),
		Phone:      r.PostFormValue("phone"),
		Address:    r.PostFormValue("address"),
		City:       r.PostFormValue("city"),
		Country:    r.PostFormValue("country"),
		PostalCode: r.PostFormValue("postal_code"),
		TaxID:      r.PostFormValue("tax_id"),
		Notes:      r.PostFormValue("notes"),
	}
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, customer Customer, id int64, err error) {
	errs := map[string]string{}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		errs[ve.Field] = ve.Message
	} else {
		h.logger.Error("save customer", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
	}
	customer.ID = id
	h.render(w, r, "pages/customers/form.html", map[string]any{
		"Errors":   errs,
		"Customer": toDTO(customer),
	}, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Customers",
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
