package httpx

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"time"

	"github.com/humzam/compute-jobs-dashboard/internal/core"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// HealthHandlers reports the health of the API's backing services.
type HealthHandlers struct {
	DB    *sql.DB
	Cache core.CacheRepository
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// GetHealth handles GET /api/health/, checking the database and cache. The
// cache is advisory (the limiter fails open without it), so only a database
// failure degrades the overall status.
func (h *HealthHandlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Database: "ok", Cache: "ok"}
	code := http.StatusOK

	if err := h.DB.PingContext(ctx); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if h.Cache == nil {
		status.Cache = "disabled"
	} else if err := h.Cache.Health(ctx); err != nil {
		status.Cache = "unreachable"
	}

	WriteJSON(w, code, status)
}
