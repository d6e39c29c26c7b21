// Package core defines the repository interfaces the service layer depends on.
package core

import (
	"context"

	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
)

// JobRepository provides access to jobs and their persisted fields.
type JobRepository interface {
	// Create inserts the job and its initial PENDING status atomically.
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	// GetByID returns the job with its latest status attached.
	GetByID(ctx context.Context, id int64) (*model.Job, error)
	// List returns a page of jobs matching opts, each with its latest
	// status attached, plus the total count before pagination.
	List(ctx context.Context, opts *model.JobListOptions) (*model.JobPage, error)
	// Delete removes the job and, via cascade, its status history.
	Delete(ctx context.Context, id int64) error
}

// StatusRepository manages the append-only status log.
type StatusRepository interface {
	// Append records a new status entry for the job. Appending a terminal
	// status also stamps the job's completed_at in the same transaction.
	Append(ctx context.Context, jobID int64, req *model.AppendStatusRequest) (*model.JobStatus, error)
	// Latest returns the most recent status entry for the job, or nil if
	// the job has no entries yet.
	Latest(ctx context.Context, jobID int64) (*model.JobStatus, error)
	// LatestForEach returns the most recent status entry for each of the
	// given jobs in a single round trip. Jobs without entries are absent
	// from the result.
	LatestForEach(ctx context.Context, jobIDs []int64) (map[int64]*model.JobStatus, error)
	// ListByJob returns the job's full status history, oldest first.
	ListByJob(ctx context.Context, jobID int64) ([]*model.JobStatus, error)
}

// StatsRepository reads and maintains the job_stats materialized view.
type StatsRepository interface {
	// Snapshot reads the materialized stats row.
	Snapshot(ctx context.Context) (*model.StatsSnapshot, error)
	// Refresh rebuilds the materialized view.
	Refresh(ctx context.Context) error
	// Aggregate computes the same figures directly from the base tables.
	Aggregate(ctx context.Context) (*model.StatsSnapshot, error)
	// PriorityDistribution returns job counts grouped by priority.
	PriorityDistribution(ctx context.Context) (map[int]int64, error)
}
