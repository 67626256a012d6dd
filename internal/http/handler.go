// Package httpapp exposes the sync engine's admin controls, health and
// metrics over HTTP.
package httpapp

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cesargomez89/walkmlb/internal/cache"
	"github.com/cesargomez89/walkmlb/internal/constants"
	"github.com/cesargomez89/walkmlb/internal/http/dto"
	"github.com/cesargomez89/walkmlb/internal/logger"
	"github.com/cesargomez89/walkmlb/internal/syncer"
)

// Admin is the engine surface the handlers drive.
type Admin interface {
	Status() syncer.RunStatus
	StartRunOnce(date time.Time, force bool)
	StartBackfill(start, end time.Time, force bool) error
	CacheSummary(ctx context.Context) ([]cache.KindSummary, error)
	ClearCache(ctx context.Context, kind string) (int64, error)
	Diagnostics(limit int) []string
	Today() time.Time
}

type Handler struct {
	Admin  Admin
	Logger *logger.Logger
	// AdminRequestLimit caps mutating admin calls per client IP and window; zero disables the cap.
	AdminRequestLimit int
}

func NewHandler(admin Admin, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Admin:             admin,
		Logger:            log.WithComponent("http"),
		AdminRequestLimit: constants.AdminRequestLimit,
	}
}

// Router builds the full route tree with middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/updater/status", h.UpdaterStatus)
		r.Get("/cache/summary", h.CacheSummary)
		r.Get("/diagnostics", h.Diagnostics)

		r.Group(func(r chi.Router) {
			if h.AdminRequestLimit > 0 {
				r.Use(httprate.LimitByIP(h.AdminRequestLimit, constants.AdminRequestWindow))
			}
			r.Post("/updater/run-once", h.RunOnce)
			r.Get("/updater/run-once", h.RunOnce)
			r.Post("/updater/backfill", h.Backfill)
			r.Post("/cache/clear", h.ClearCache)
		})
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, dto.ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeValidation(w http.ResponseWriter, errs []dto.ValidationError) {
	h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: dto.ToResponse(errs), Fields: dto.ToMap(errs)})
}
