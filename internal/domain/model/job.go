// Package model defines the core data types and structures used throughout the job tracking system.
package model

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
)

// StatusType represents the kind of status record appended to a job's history.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type StatusType string

const (
	// StatusPending indicates a job is waiting to be processed.
	StatusPending StatusType = "PENDING"
	// StatusRunning indicates a job is currently being processed.
	StatusRunning StatusType = "RUNNING"
	// StatusCompleted indicates a job has finished successfully.
	StatusCompleted StatusType = "COMPLETED"
	// StatusFailed indicates a job has failed to complete.
	StatusFailed StatusType = "FAILED"
	// StatusCancelled indicates a job was cancelled before completion.
	StatusCancelled StatusType = "CANCELLED"
)

// StatusTypes lists every valid status type in display order.
var StatusTypes = []StatusType{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// UnmarshalText implements encoding.TextUnmarshaler so status types parse case-insensitively.
func (t *StatusType) UnmarshalText(text []byte) error {
	v := StatusType(strings.ToUpper(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return apperrors.ValidationField("status_type", "invalid status type")
	}
	*t = v
	return nil
}

// Valid returns true if the StatusType is one of the five known values.
func (t StatusType) Valid() bool {
	switch t {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true for statuses that end a job's lifecycle and stamp completed_at.
func (t StatusType) Terminal() bool {
	return t == StatusCompleted || t == StatusFailed || t == StatusCancelled
}

// Job represents a trackable unit of work with its metadata and derived latest status.
type Job struct {
	ID                   int64           `json:"id"                              db:"id"`
	Name                 string          `json:"name"                            db:"name"`
	Description          string          `json:"description"                     db:"description"`
	Priority             int             `json:"priority"                        db:"priority"`
	ScheduledAt          *time.Time      `json:"scheduled_at,omitempty"          db:"scheduled_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"          db:"completed_at"`
	ErrorMessage         string          `json:"error_message"                   db:"error_message"`
	ResultData           json.RawMessage `json:"result_data,omitempty"           db:"result_data"`
	ResourceRequirements json.RawMessage `json:"resource_requirements,omitempty" db:"resource_requirements"`
	CreatedAt            time.Time       `json:"created_at"                      db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"                      db:"updated_at"`

	// LatestStatus is a derived, read-only projection of the status log.
	LatestStatus *JobStatus `json:"latest_status"`
}

// JobStatus is one immutable, timestamped record in a job's append-only status history.
type JobStatus struct {
	ID         int64      `json:"id"                 db:"id"`
	JobID      int64      `json:"-"                  db:"job_id"`
	StatusType StatusType `json:"status_type"        db:"status_type"`
	Timestamp  time.Time  `json:"timestamp"          db:"timestamp"`
	Message    string     `json:"message,omitempty"  db:"message"`
	Progress   *int       `json:"progress,omitempty" db:"progress"`
}

const (
	// DefaultPriority is assigned when a create request omits priority.
	DefaultPriority = 5
	// MinPriority and MaxPriority bound the priority field.
	MinPriority = 1
	MaxPriority = 10
)

// CreateJobRequest represents a request to create a new job.
// Creation always appends an implicit initial PENDING status.
type CreateJobRequest struct {
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	Priority             *int            `json:"priority,omitempty"`
	ScheduledAt          *time.Time      `json:"scheduled_at,omitempty"`
	ResourceRequirements json.RawMessage `json:"resource_requirements,omitempty"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	if r.Priority != nil && (*r.Priority < MinPriority || *r.Priority > MaxPriority) {
		return apperrors.ValidationField("priority", "priority must be between 1 and 10")
	}
	return nil
}

// PriorityOrDefault returns the requested priority, or DefaultPriority when unset.
func (r *CreateJobRequest) PriorityOrDefault() int {
	if r.Priority == nil {
		return DefaultPriority
	}
	return *r.Priority
}

// AppendStatusRequest represents a status transition to append to a job's history.
type AppendStatusRequest struct {
	StatusType StatusType `json:"status_type"`
	Message    string     `json:"message,omitempty"`
	Progress   *int       `json:"progress,omitempty"`
}

// Validate validates the AppendStatusRequest fields.
func (r *AppendStatusRequest) Validate() error {
	if !r.StatusType.Valid() {
		return apperrors.ValidationField("status_type", "invalid status type")
	}
	if r.Progress != nil && (*r.Progress < 0 || *r.Progress > 100) {
		return apperrors.ValidationField("progress", "progress must be between 0 and 100")
	}
	return nil
}

// BulkStatusUpdateRequest applies one status transition to a set of jobs.
type BulkStatusUpdateRequest struct {
	JobIDs []int64             `json:"job_ids"`
	Status AppendStatusRequest `json:"status"`
}

// Validate validates the BulkStatusUpdateRequest fields.
func (r *BulkStatusUpdateRequest) Validate() error {
	if len(r.JobIDs) == 0 {
		return apperrors.ValidationField("job_ids", "job_ids is required")
	}
	return r.Status.Validate()
}

// BulkStatusUpdateResponse reports how many jobs gained a status record.
type BulkStatusUpdateResponse struct {
	UpdatedJobs int `json:"updated_jobs"`
}
