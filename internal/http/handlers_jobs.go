// Package httpx provides the HTTP handlers and middleware for the job tracking API.
package httpx

import (
	"net/http"
	"strconv"

	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
	"github.com/humzam/compute-jobs-dashboard/internal/service"
)

// JobHandlers provides HTTP handlers for job-related operations.
type JobHandlers struct {
	Svc *service.JobService
}

// jobListEnvelope is the paginated listing payload.
type jobListEnvelope struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []*model.Job `json:"results"`
}

// ListJobs handles GET /api/jobs/ with filtering, ordering, and pagination.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	opts, page := ParseJobListOptions(r.URL.Query())

	result, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	envelope := jobListEnvelope{
		Count:   result.Count,
		Results: result.Jobs,
	}
	if opts.Offset+len(result.Jobs) < result.Count {
		envelope.Next = pageURL(r, page+1)
	}
	if page > 1 {
		envelope.Previous = pageURL(r, page-1)
	}

	WriteJSON(w, http.StatusOK, envelope)
}

// pageURL rebuilds the request URL pointing at the given page.
func pageURL(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// CreateJob handles POST /api/jobs/.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// GetJob handles GET /api/jobs/{id}/.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	job, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// UpdateJobStatus handles PUT and PATCH /api/jobs/{id}/. Updates are status
// transitions only; the job's descriptive fields are immutable after create.
func (h *JobHandlers) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	var req model.AppendStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// DeleteJob handles DELETE /api/jobs/{id}/.
func (h *JobHandlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdateStatus handles POST /api/jobs/bulk_status_update/.
func (h *JobHandlers) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.BulkStatusUpdateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.BulkUpdateStatus(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ListJobStatuses handles GET /api/jobs/{id}/statuses/, returning the job's
// full status history oldest first.
func (h *JobHandlers) ListJobStatuses(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDFromPath(w, r)
	if !ok {
		return
	}

	statuses, err := h.Svc.ListStatuses(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if statuses == nil {
		statuses = []*model.JobStatus{}
	}

	WriteJSON(w, http.StatusOK, statuses)
}

func jobIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteAppError(w, apperrors.ValidationField("id", "job id must be a positive integer"))
		return 0, false
	}
	return id, true
}
