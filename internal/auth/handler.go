package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// Handler wires login and logout endpoints.
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

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.User() != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "", http.StatusOK)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.service.Authenticate(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrAccountLocked):
			h.render(w, r, "Account is temporarily locked. Try again later.", http.StatusUnauthorized)
		case errors.Is(err, shared.ErrInvalidCredentials):
			h.render(w, r, "Invalid email or password.", http.StatusUnauthorized)
		default:
			h.logger.Error("authenticate", slog.Any("error", err))
			h.render(w, r, "Sign-in is unavailable right now.", http.StatusInternalServerError)
		}
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, h.sessions.TTL(), r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Error("register login session", slog.Any("error", err))
	}

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + user.FirstName})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Error("remove login session", slog.Any("error", err))
		}
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errorMessage string, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Sign in",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data: map[string]any{
			"Error": errorMessage,
		},
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/auth/login.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
