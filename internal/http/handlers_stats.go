package httpx

import (
	"net/http"

	"github.com/humzam/compute-jobs-dashboard/internal/service"
)

// StatsHandlers provides HTTP handlers for aggregate job statistics.
type StatsHandlers struct {
	Svc *service.StatsService
}

// GetStats handles GET /api/jobs/stats/.
func (h *StatsHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.GetStats(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
