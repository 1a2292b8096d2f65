package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kontorapp/kontor/internal/app"
	"github.com/kontorapp/kontor/internal/auth"
	"github.com/kontorapp/kontor/internal/catalog/categories"
	"github.com/kontorapp/kontor/internal/catalog/products"
	"github.com/kontorapp/kontor/internal/customers"
	"github.com/kontorapp/kontor/internal/dashboard"
	"github.com/kontorapp/kontor/internal/expenses"
	"github.com/kontorapp/kontor/internal/invoices"
	"github.com/kontorapp/kontor/internal/platform/db"
	"github.com/kontorapp/kontor/internal/platform/pdf"
	"github.com/kontorapp/kontor/internal/rbac"
	"github.com/kontorapp/kontor/internal/reports"
	"github.com/kontorapp/kontor/internal/roles"
	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/users"
	"github.com/kontorapp/kontor/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "kontor_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	pdfClient := pdf.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo)
	roleRepo := roles.NewRepository(dbpool)
	rbacMiddleware := rbac.NewMiddleware(userRepo)

	authService := auth.NewService(userRepo, auth.NewSessionRepository(dbpool), cfg.LoginMaxAttempts, cfg.LoginLockout)
	authHandler := auth.NewHandler(logger, authService, templates, csrfManager, sessionManager)

	customerService := customers.NewService(customers.NewRepository(dbpool))
	customerHandler := customers.NewHandler(logger, customerService, templates, csrfManager, sessionManager)

	categoryService := categories.NewService(categories.NewRepository(dbpool))
	categoryHandler := categories.NewHandler(logger, categoryService, templates, csrfManager, sessionManager)

	productService := products.NewService(products.NewRepository(dbpool))
	productHandler := products.NewHandler(logger, productService, categoryService, templates, csrfManager, sessionManager)

	expenseService := expenses.NewService(expenses.NewRepository(dbpool), expenses.NewCategoryRepository(dbpool))
	expenseHandler := expenses.NewHandler(logger, expenseService, templates, csrfManager, sessionManager)

	invoiceService := invoices.NewService(invoices.NewRepository(dbpool))
	invoiceHandler := invoices.NewHandler(logger, invoiceService, customerService, templates, csrfManager, sessionManager, pdfClient)

	userHandler := users.NewHandler(logger, userService, roleRepo, templates, csrfManager, sessionManager)

	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool))
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, templates, csrfManager, sessionManager)

	reportService := reports.NewService(reports.NewRepository(dbpool))
	reportHandler := reports.NewHandler(logger, reportService, templates, csrfManager, sessionManager)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		RBAC:             rbacMiddleware,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		CustomerHandler:  customerHandler,
		CategoryHandler:  categoryHandler,
		ProductHandler:   productHandler,
		ExpenseHandler:   expenseHandler,
		InvoiceHandler:   invoiceHandler,
		UserHandler:      userHandler,
		ReportHandler:    reportHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
