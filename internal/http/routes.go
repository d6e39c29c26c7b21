package httpx

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/humzam/compute-jobs-dashboard/internal/core"
	"github.com/humzam/compute-jobs-dashboard/internal/ratelimit"
	"github.com/humzam/compute-jobs-dashboard/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs    *service.JobService
	Stats   *service.StatsService
	Limiter *ratelimit.Limiter // Optional: nil disables rate limiting
	DB      *sql.DB
	Cache   core.CacheRepository
	Logger  *slog.Logger
}

// NewRouter creates and configures the HTTP router with middleware applied.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	statsHandlers := &StatsHandlers{Svc: services.Stats}
	healthHandlers := &HealthHandlers{DB: services.DB, Cache: services.Cache}

	registerJobRoutes(mux, jobHandlers, statsHandlers)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.HandleFunc("GET /api/health", healthHandlers.GetHealth)
	mux.HandleFunc("GET /api/health/{$}", healthHandlers.GetHealth)

	middlewares := []func(http.Handler) http.Handler{
		Recover(logger),
		Logging(logger),
		RequestID(),
	}
	if services.Limiter != nil {
		middlewares = append(middlewares, RateLimit(services.Limiter))
	}

	return Chain(mux, middlewares...)
}

// registerJobRoutes wires the job and stats endpoints. Each route is
// registered with and without a trailing slash so clients following either
// convention land on the same handler.
func registerJobRoutes(mux *http.ServeMux, jobs *JobHandlers, stats *StatsHandlers) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, fn)
		mux.HandleFunc(pattern+"/{$}", fn)
	}

	handle("GET /api/jobs", jobs.ListJobs)
	handle("POST /api/jobs", jobs.CreateJob)
	handle("GET /api/jobs/stats", stats.GetStats)
	handle("POST /api/jobs/bulk_status_update", jobs.BulkUpdateStatus)
	handle("GET /api/jobs/{id}", jobs.GetJob)
	handle("PUT /api/jobs/{id}", jobs.UpdateJobStatus)
	handle("PATCH /api/jobs/{id}", jobs.UpdateJobStatus)
	handle("DELETE /api/jobs/{id}", jobs.DeleteJob)
	handle("GET /api/jobs/{id}/statuses", jobs.ListJobStatuses)
}
