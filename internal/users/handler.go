package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/roles"
	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// Handler wires HTTP endpoints for user administration pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	roles     roles.Repository
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, roleRepo roles.Repository, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, roles: roleRepo, templates: templates, csrf: csrf, sessions: sessions}
}

// MountRoutes registers user-admin routes. The caller is expected to wrap
// the group with an Admin role guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.form)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}/edit", h.update)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		http.Error(w, "Failed to load users", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users/list.html", map[string]any{
		"Users": result,
	}, http.StatusOK)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	available, err := h.roles.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to load roles", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users/form.html", map[string]any{
		"Errors": map[string]string{},
		"User":   nil,
		"Roles":  available,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := inputFromForm(r)

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.renderFormError(w, r, in, 0, err)
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "User "+created.Email+" created")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	available, err := h.roles.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to load roles", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users/form.html", map[string]any{
		"Errors": map[string]string{},
		"User":   user,
		"Roles":  available,
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := inputFromForm(r)
	in.IsActive = r.PostFormValue("is_active") == "on"

	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.renderFormError(w, r, in, id, err)
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "User updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/users", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/users", "success", "User deleted")
}

func inputFromForm(r *http.Request) Input {
	return Input{
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Roles:     r.PostForm["roles"],
	}
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, in Input, id int64, err error) {
	errs := map[string]string{}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		errs[ve.Field] = ve.Message
	} else if errors.Is(err, shared.ErrConflict) {
		errs["email"] = "email is already in use"
	} else {
		h.logger.Error("save user", slog.Any("error", err))
		errs["general"] = shared.UserSafeMessage(err)
	}
	available, roleErr := h.roles.List(r.Context())
	if roleErr != nil {
		available = nil
	}
	h.render(w, r, "pages/users/form.html", map[string]any{
		"Errors": errs,
		"User": DTO{
			ID:        id,
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			IsActive:  in.IsActive,
			Roles:     in.Roles,
		},
		"Roles": available,
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
		Title:       "Users",
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
