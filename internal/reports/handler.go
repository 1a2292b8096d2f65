package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kontorapp/kontor/internal/platform/httpx"
	"github.com/kontorapp/kontor/internal/shared"
	"github.com/kontorapp/kontor/internal/view"
)

// Handler wires HTML report pages and the JSON data endpoints.
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

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.salesPage)
	r.Post("/sales/data", h.salesData)
	r.Get("/sales/export", h.salesExport)
	r.Get("/financial", h.financialPage)
	r.Post("/financial/data", h.financialData)
}

type periodRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *Handler) parsePeriod(r *http.Request) (time.Time, time.Time, error) {
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return time.Time{}, time.Time{}, shared.NewValidationError("period", "invalid request body")
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewValidationError("from", "invalid date")
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewValidationError("to", "invalid date")
	}
	return from, to, nil
}

// defaultWindow is the six months ending today.
func defaultWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return to.AddDate(0, -6, 0), to
}

func queryWindow(r *http.Request) (time.Time, time.Time) {
	from, to := defaultWindow()
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			to = parsed
		}
	}
	return from, to
}

func (h *Handler) salesPage(w http.ResponseWriter, r *http.Request) {
	from, to := queryWindow(r)
	report, err := h.service.Sales(r.Context(), from, to)
	if err != nil {
		h.logger.Error("build sales report", slog.Any("error", err))
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/reports/sales.html", map[string]any{
		"Report": report,
	})
}

func (h *Handler) salesData(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.Sales(r.Context(), from, to)
	if err != nil {
		h.respondServiceError(w, "build sales report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) salesExport(w http.ResponseWriter, r *http.Request) {
	from, to := queryWindow(r)
	report, err := h.service.Sales(r.Context(), from, to)
	if err != nil {
		h.respondServiceError(w, "export sales report", err)
		return
	}

	filename := "sales-" + from.Format("2006-01-02") + "-" + to.Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteSalesCSV(w, report, time.Now()); err != nil {
		h.logger.Error("stream sales csv", slog.Any("error", err))
	}
}

func (h *Handler) financialPage(w http.ResponseWriter, r *http.Request) {
	from, to := queryWindow(r)
	report, err := h.service.Financial(r.Context(), from, to)
	if err != nil {
		h.logger.Error("build financial report", slog.Any("error", err))
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/reports/financial.html", map[string]any{
		"Report": report,
	})
}

func (h *Handler) financialData(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.Financial(r.Context(), from, to)
	if err != nil {
		h.respondServiceError(w, "build financial report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if !shared.IsValidation(err) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Reports",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
