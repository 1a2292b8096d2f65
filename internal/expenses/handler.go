package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// Handler wires HTTP endpoints for expense and expense-category pages.
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

// MountRoutes registers expense routes. Category routes are mounted first so
// "/categories" does not collide with the "/{id}" parameter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/categories/new", h.categoryForm)
	r.Post("/categories", h.createCategory)
	r.Get("/categories/{id}/edit", h.editCategoryForm)
	r.Post("/categories/{id}/edit", h.updateCategory)
	r.Post("/categories/{id}/delete", h.deleteCategory)

	r.Get("/", h.list)
	r.Get("/new", h.form)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}/edit", h.update)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := SearchFilters{Term: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CategoryID = &id
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
	if raw := r.URL.Query().Get("is_paid"); raw != "" {
		isPaid := raw == "true"
		filters.IsPaid = &isPaid
	}

	result, err := h.service.Search(r.Context(), filters)
	if err != nil {
		h.logger.Error("search expenses", slog.Any("error", err))
		http.Error(w, "Failed to load expenses", http.StatusInternalServerError)
		return
	}
	cats, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list expense categories", slog.Any("error", err))
		http.Error(w, "Failed to load expenses", http.StatusInternalServerError)
		return
	}

	var total float64
	for _, e := range result {
		total += e.Amount
	}

	h.render(w, r, "pages/expenses/list.html", map[string]any{
		"Expenses":   result,
		"Categories": cats,
		"Filters":    filters,
		"Total":      total,
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}
	expense, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/expenses/detail.html", map[string]any{
		"Expense": expense,
	}, http.StatusOK)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListActiveCategories(r.Context())
	if err != nil {
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/expenses/form.html", map[string]any{
		"Errors":     map[string]string{},
		"Expense":    nil,
		"Categories": cats,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	expense := expenseFromForm(r)

	created, err := h.service.Create(r.Context(), expense)
	if err != nil {
		h.renderFormError(w, r, expense, 0, err)
		return
	}
	h.redirectWithFlash(w, r, "/expenses/"+strconv.FormatInt(created.ID, 10), "success", "Expense recorded")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}
	expense, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}
	cats, err := h.service.ListActiveCategories(r.Context())
	if err != nil {
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/expenses/form.html", map[string]any{
		"Errors":     map[string]string{},
		"Expense":    expense,
		"Categories": cats,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	expense := expenseFromForm(r)

	if _, err := h.service.Update(r.Context(), id, expense); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Expense not found", http.StatusNotFound)
			return
		}
		h.renderFormError(w, r, expense, id, err)
		return
	}
	h.redirectWithFlash(w, r, "/expenses/"+strconv.FormatInt(id, 10), "success", "Expense updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/expenses", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/expenses", "success", "Expense deleted")
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list expense categories", slog.Any("error", err))
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/expenses/categories.html", map[string]any{
		"Categories": cats,
	}, http.StatusOK)
}

func (h *Handler) categoryForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/expenses/category_form.html", map[string]any{
		"Errors":   map[string]string{},
		"Category": nil,
	}, http.StatusOK)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	category := categoryFromForm(r)

	if _, err := h.service.CreateCategory(r.Context(), category); err != nil {
		h.renderCategoryFormError(w, r, category, 0, err)
		return
	}
	h.redirectWithFlash(w, r, "/expenses/categories", "success", "Category created")
}

func (h *Handler) editCategoryForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/expenses/category_form.html", map[string]any{
		"Errors":   map[string]string{},
		"Category": category,
	}, http.StatusOK)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	category := categoryFromForm(r)
	category.IsActive = r.PostFormValue("is_active") == "on"

	if _, err := h.service.UpdateCategory(r.Context(), id, category); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		h.renderCategoryFormError(w, r, category, id, err)
		return
	}
	h.redirectWithFlash(w, r, "/expenses/categories", "success", "Category updated")
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/expenses/categories", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/expenses/categories", "success", "Category deleted")
}

func expenseFromForm(r *http.Request) Expense {
	e := Expense{
		Description:   r.PostFormValue("description"),
		Vendor:        r.PostFormValue("vendor"),
		ReceiptNumber: r.PostFormValue("receipt_number"),
		Notes:         r.PostFormValue("notes"),
		IsPaid:        r.PostFormValue("is_paid") == "on",
	}
	e.Amount, _ = strconv.ParseFloat(r.PostFormValue("amount"), 64)
	if raw := r.PostFormValue("expense_date"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			e.ExpenseDate = date
		}
	}
	if raw := r.PostFormValue("category_id"); raw != "" {
		if categoryID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			e.CategoryID = &categoryID
		}
	}
	return e
}

func categoryFromForm(r *http.Request) Category {
	return Category{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, expense Expense, id int64, err error) {
	errs := map[string]string{}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		errs[ve.Field] = ve.Message
	} else {
		h.logger.Error("save expense", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
	}
	expense.ID = id
	cats, catErr := h.service.ListActiveCategories(r.Context())
	if catErr != nil {
		cats = nil
	}
	h.render(w, r, "pages/expenses/form.html", map[string]any{
		"Errors":     errs,
		"Expense":    toDTO(expense, ""),
		"Categories": cats,
	}, http.StatusBadRequest)
}

func (h *Handler) renderCategoryFormError(w http.ResponseWriter, r *http.Request, category Category, id int64, err error) {
	errs := map[string]string{}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		errs[ve.Field] = ve.Message
	} else {
		h.logger.Error("save expense category", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
	}
	category.ID = id
	h.render(w, r, "pages/expenses/category_form.html", map[string]any{
		"Errors":   errs,
		"Category": toCategoryDTO(category, 0),
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
		Title:       "Expenses",
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
