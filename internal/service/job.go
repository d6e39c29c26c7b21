// Package service provides the business logic layer between the HTTP handlers
// and the data repositories.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/humzam/compute-jobs-dashboard/internal/core"
	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs     core.JobRepository    // Required: job repository
	Statuses core.StatusRepository // Required: status log repository
	Logger   *slog.Logger          // Optional: structured logger
}

// JobService provides business logic for job CRUD and status transitions.
type JobService struct {
	jobs     core.JobRepository
	statuses core.StatusRepository
	logger   *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Statuses == nil {
		return nil, errors.New("StatusRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobService{
		jobs:     opts.Jobs,
		statuses: opts.Statuses,
		logger:   logger.With("component", "job_service"),
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Create creates a job. The repository appends the initial PENDING status in
// the same transaction as the insert.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := s.jobs.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "job created", "job_id", job.ID, "priority", job.Priority)
	return job, nil
}

// Get returns the job with its latest status attached.
func (s *JobService) Get(ctx context.Context, id int64) (*model.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// List returns a filtered page of jobs.
func (s *JobService) List(ctx context.Context, opts *model.JobListOptions) (*model.JobPage, error) {
	return s.jobs.List(ctx, opts)
}

// UpdateStatus appends a status record to the job's history and returns the
// job with the new latest status attached.
func (s *JobService) UpdateStatus(
	ctx context.Context,
	jobID int64,
	req *model.AppendStatusRequest,
) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status, err := s.statuses.Append(ctx, jobID, req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "status appended",
		"job_id", jobID, "status_type", status.StatusType, "status_id", status.ID)

	return s.jobs.GetByID(ctx, jobID)
}

// BulkUpdateStatus appends the same status to each listed job. Unknown job ids
// are skipped rather than failing the batch; the response counts only jobs
// that actually gained a record.
func (s *JobService) BulkUpdateStatus(
	ctx context.Context,
	req *model.BulkStatusUpdateRequest,
) (*model.BulkStatusUpdateResponse, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	updated := 0
	for _, jobID := range req.JobIDs {
		status := req.Status
		if _, err := s.statuses.Append(ctx, jobID, &status); err != nil {
			if apperrors.IsNotFound(err) {
				s.logger.WarnContext(ctx, "bulk update skipped missing job", "job_id", jobID)
				continue
			}
			return nil, err
		}
		updated++
	}

	s.logger.InfoContext(ctx, "bulk status update applied",
		"requested", len(req.JobIDs), "updated", updated, "status_type", req.Status.StatusType)

	return &model.BulkStatusUpdateResponse{UpdatedJobs: updated}, nil
}

// ListStatuses returns the job's full status history, oldest first.
func (s *JobService) ListStatuses(ctx context.Context, jobID int64) ([]*model.JobStatus, error) {
	return s.statuses.ListByJob(ctx, jobID)
}

// Delete removes the job and its status history.
func (s *JobService) Delete(ctx context.Context, id int64) error {
	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "job deleted", "job_id", id)
	return nil
}
