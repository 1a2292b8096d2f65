package categories

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// Handler wires HTTP endpoints for category pages.
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

// MountRoutes registers category routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.form)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}/edit", h.update)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/categories/list.html", map[string]any{
		"Categories": cats,
	}, http.StatusOK)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/categories/form.html", map[string]any{
		"Errors":   map[string]string{},
		"Category": nil,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	category := categoryFromForm(r)

	if _, err := h.service.Create(r.Context(), category); err != nil {
		h.renderFormError(w, r, category, err)
		return
	}
	h.redirectWithFlash(w, r, "/categories", "success", "Category created")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/categories/form.html", map[string]any{
		"Errors":   map[string]string{},
		"Category": category,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.service.Update(r.Context(), id, category); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		h.renderFormError(w, r, category, err)
		return
	}
	h.redirectWithFlash(w, r, "/categories", "success", "Category updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/categories", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/categories", "success", "Category deleted")
}

func categoryFromForm(r *http.Request) Category {
	return Category{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Icon:        r.PostFormValue("icon"),
		Color:       r.PostFormValue("color"),
	}
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, category Category, err error) {
	errs := map[string]string{}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		errs[ve.Field] = ve.Message
	} else {
		h.logger.Error("save category", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
	}
	h.render(w, r, "pages/categories/form.html", map[string]any{
		"Errors":   errs,
		"Category": toDTO(category, 0),
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
		Title:       "Categories",
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
