package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/catalog/categories"
	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// Handler wires HTTP endpoints for product pages.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	categories *categories.Service
	templates  *view.Engine
	csrf       *shared.CSRFManager
	sessions   *shared.SessionManager
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, categoryService *categories.Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, categories: categoryService, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.form)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}/edit", h.update)
	r.Post("/{id}/delete", h.delete)
	r.Post("/{id}/stock", h.adjustStock)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := SearchFilters{
		Term:     r.URL.Query().Get("search"),
		LowStock: r.URL.Query().Get("low_stock") == "true",
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := Type(raw)
		if t.Valid() {
			filters.Type = &t
		}
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CategoryID = &id
		}
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		isActive := raw == "true"
		filters.IsActive = &isActive
	}

	result, err := h.service.Search(r.Context(), filters)
	if err != nil {
		h.logger.Error("search products", slog.Any("error", err))
		http.Error(w, "Failed to load products", http.StatusInternalServerError)
		return
	}
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		http.Error(w, "Failed to load products", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/products/list.html", map[string]any{
		"Products":   result,
		"Categories": cats,
		"Filters":    filters,
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/products/detail.html", map[string]any{
		"Product": product,
	}, http.StatusOK)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListActive(r.Context())
	if err != nil {
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/products/form.html", map[string]any{
		"Errors":     map[string]string{},
		"Product":    nil,
		"Categories": cats,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	product := productFromForm(r)

	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		h.renderFormError(w, r, product, 0, err)
		return
	}
	h.redirectWithFlash(w, r, "/products/"+strconv.FormatInt(created.ID, 10), "success", "Product created")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	cats, err := h.categories.ListActive(r.Context())
	if err != nil {
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/products/form.html", map[string]any{
		"Errors":     map[string]string{},
		"Product":    product,
		"Categories": cats,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	product := productFromForm(r)
	product.IsActive = r.PostFormValue("is_active") == "on"

	if _, err := h.service.Update(r.Context(), id, product); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		h.renderFormError(w, r, product, id, err)
		return
	}
	h.redirectWithFlash(w, r, "/products/"+strconv.FormatInt(id, 10), "success", "Product updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/products", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/products", "success", "Product deleted")
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	delta, err := strconv.Atoi(r.PostFormValue("delta"))
	if err != nil {
		h.redirectWithFlash(w, r, "/products/"+strconv.FormatInt(id, 10), "error", "Adjustment must be a whole number")
		return
	}

	if _, err := h.service.AdjustStock(r.Context(), id, delta); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			http.Error(w, "Product not found", http.StatusNotFound)
		case errors.Is(err, ErrServiceStock):
			h.redirectWithFlash(w, r, "/products/"+strconv.FormatInt(id, 10), "error", "Services do not carry stock")
		case errors.Is(err, ErrNegativeStock):
			h.redirectWithFlash(w, r, "/products/"+strconv.FormatInt(id, 10), "error", "Stock cannot go below zero")
		default:
			h.logger.Error("adjust stock", slog.Any("error", err))
			h.redirectWithFlash(w, r, "/products/"+strconv.FormatInt(id, 10), "error", shared.UserSafeMessage(err))
		}
		return
	}
	h.redirectWithFlash(w, r, "/products/"+strconv.FormatInt(id, 10), "success", "Stock adjusted")
}

func productFromForm(r *http.Request) Product {
	p := Product{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		SKU:         r.PostFormValue("sku"),
		Type:        Type(r.PostFormValue("type")),
	}
	p.Price, _ = strconv.ParseFloat(r.PostFormValue("price"), 64)
	if raw := r.PostFormValue("cost"); raw != "" {
		if cost, err := strconv.ParseFloat(raw, 64); err == nil {
			p.Cost = &cost
		}
	}
	p.Stock, _ = strconv.Atoi(r.PostFormValue("stock"))
	if raw := r.PostFormValue("min_stock"); raw != "" {
		if minStock, err := strconv.Atoi(raw); err == nil {
			p.MinStock = &minStock
		}
	}
	if raw := r.PostFormValue("category_id"); raw != "" {
		if categoryID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			p.CategoryID = &categoryID
		}
	}
	return p
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, product Product, id int64, err error) {
	errs := map[string]string{}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		errs[ve.Field] = ve.Message
	} else {
		h.logger.Error("save product", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
	}
	product.ID = id
	cats, catErr := h.categories.ListActive(r.Context())
	if catErr != nil {
		cats = nil
	}
	h.render(w, r, "pages/products/form.html", map[string]any{
		"Errors":     errs,
		"Product":    toDTO(product, ""),
		"Categories": cats,
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
		Title:       "Products",
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
