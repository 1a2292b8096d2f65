package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kontorapp/kontor/internal/auth"
	"github.com/kontorapp/kontor/internal/catalog/categories"
	"github.com/kontorapp/kontor/internal/catalog/products"
	"github.com/kontorapp/kontor/internal/customers"
	"github.com/kontorapp/kontor/internal/dashboard"
	"github.com/kontorapp/kontor/internal/expenses"
	"github.com/kontorapp/kontor/internal/invoices"
	"github.com/kontorapp/kontor/internal/rbac"
	"github.com/kontorapp/kontor/internal/reports"
	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/users"
	"github.com/kontorapp/kontor/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBAC           *rbac.Middleware

	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	CustomerHandler  *customers.Handler
	CategoryHandler  *categories.Handler
	ProductHandler   *products.Handler
	ExpenseHandler   *expenses.Handler
	InvoiceHandler   *invoices.Handler
	UserHandler      *users.Handler
	ReportHandler    *reports.Handler
}

// NewRouter constructs the chi.Router with Kontor defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.RBAC.RequireAuthenticated)

		params.DashboardHandler.MountRoutes(r)
		r.Route("/customers", params.CustomerHandler.MountRoutes)
		r.Route("/categories", params.CategoryHandler.MountRoutes)
		r.Route("/products", params.ProductHandler.MountRoutes)
		r.Route("/expenses", params.ExpenseHandler.MountRoutes)
		r.Route("/invoices", params.InvoiceHandler.MountRoutes)
		r.Route("/reports", params.ReportHandler.MountRoutes)

		r.Route("/users", func(r chi.Router) {
			r.Use(params.RBAC.RequireRole("Admin"))
			params.UserHandler.MountRoutes(r)
		})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers so
// browsers keep assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
