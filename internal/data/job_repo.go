// Package data provides PostgreSQL and Redis implementations of the core repository interfaces.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"

	"github.com/humzam/compute-jobs-dashboard/internal/data/pgxutil"
	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
)

// RepoConfig holds shared configuration for the data repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for job management.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  j.id,
  j.name,
  j.description,
  j.priority,
  j.scheduled_at,
  j.completed_at,
  j.error_message,
  j.result_data,
  j.resource_requirements,
  j.created_at,
  j.updated_at
`

// latestStatusJoin attaches each job's most recent status record. Ties on
// timestamp break toward the higher id, i.e. the later insert.
const latestStatusJoin = `
  LEFT JOIN LATERAL (
    SELECT s.id, s.status_type, s.timestamp, s.message, s.progress
    FROM job_statuses s
    WHERE s.job_id = j.id
    ORDER BY s.timestamp DESC, s.id DESC
    LIMIT 1
  ) ls ON true
`

const latestStatusColumns = `
  ls.id,
  ls.status_type,
  ls.timestamp,
  ls.message,
  ls.progress
`

type jobRowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	resultData, resourceReqs json.RawMessage
	scheduledAt, completedAt sql.NullTime

	lsID        sql.NullInt64
	lsType      sql.NullString
	lsTimestamp sql.NullTime
	lsMessage   sql.NullString
	lsProgress  sql.NullInt64
}

func (d *jobRowData) scanInto(scanner jobRowScanner, job *model.Job) error {
	return scanner.Scan(
		&job.ID,
		&job.Name,
		&job.Description,
		&job.Priority,
		&d.scheduledAt,
		&d.completedAt,
		&job.ErrorMessage,
		&d.resultData,
		&d.resourceReqs,
		&job.CreatedAt,
		&job.UpdatedAt,
		&d.lsID,
		&d.lsType,
		&d.lsTimestamp,
		&d.lsMessage,
		&d.lsProgress,
	)
}

func (d *jobRowData) apply(job *model.Job) {
	job.ScheduledAt = cloneNullableTime(d.scheduledAt)
	job.CompletedAt = cloneNullableTime(d.completedAt)
	job.ResultData = cloneJSON(d.resultData)
	job.ResourceRequirements = cloneJSON(d.resourceReqs)

	if !d.lsID.Valid {
		return
	}
	status := &model.JobStatus{
		ID:         d.lsID.Int64,
		JobID:      job.ID,
		StatusType: model.StatusType(d.lsType.String),
		Timestamp:  d.lsTimestamp.Time.UTC(),
		Message:    d.lsMessage.String,
	}
	if d.lsProgress.Valid {
		p := int(d.lsProgress.Int64)
		status.Progress = &p
	}
	job.LatestStatus = status
}

func scanJobFromRow(scanner jobRowScanner) (*model.Job, error) {
	job := &model.Job{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}

	data.apply(job)
	return job, nil
}

func cloneJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// Create inserts a new job and its initial PENDING status in one transaction.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if validateErr := req.Validate(); validateErr != nil {
		return nil, validateErr
	}

	resourceReqs := req.ResourceRequirements
	if len(resourceReqs) == 0 {
		resourceReqs = nil
	}

	var job *model.Job
	txErr := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			now := r.timeProvider.Now().UTC()

			row := tx.QueryRowContext(ctx, `
        INSERT INTO jobs (name, description, priority, scheduled_at, resource_requirements, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)
        RETURNING id, name, description, priority, scheduled_at, completed_at, error_message,
                  result_data, resource_requirements, created_at, updated_at
      `, req.Name, req.Description, req.PriorityOrDefault(), req.ScheduledAt, []byte(resourceReqs), now)

			inserted := &model.Job{}
			var data jobRowData
			if scanErr := row.Scan(
				&inserted.ID,
				&inserted.Name,
				&inserted.Description,
				&inserted.Priority,
				&data.scheduledAt,
				&data.completedAt,
				&inserted.ErrorMessage,
				&data.resultData,
				&data.resourceReqs,
				&inserted.CreatedAt,
				&inserted.UpdatedAt,
			); scanErr != nil {
				return fmt.Errorf("insert job: %w", scanErr)
			}
			data.apply(inserted)

			status := &model.JobStatus{}
			statusRow := tx.QueryRowContext(ctx, `
        INSERT INTO job_statuses (job_id, status_type, timestamp, message)
        VALUES ($1, $2, $3, '')
        RETURNING id, job_id, status_type, timestamp, message, progress
      `, inserted.ID, model.StatusPending, now)
			if scanErr := scanStatus(statusRow, status); scanErr != nil {
				return fmt.Errorf("insert initial status: %w", scanErr)
			}

			inserted.LatestStatus = status
			job = inserted
			return nil
		},
	})
	if txErr != nil {
		return nil, apperrors.MapDBError(txErr)
	}

	return job, nil
}

// GetByID returns the job with its latest status attached.
func (r *JobRepo) GetByID(ctx context.Context, id int64) (*model.Job, error) {
	query := `SELECT ` + jobColumns + `, ` + latestStatusColumns + `
    FROM jobs j` + latestStatusJoin + `
    WHERE j.id = $1`

	row := r.DB.QueryRowContext(ctx, query, id)
	job, err := scanJobFromRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Job")
		}
		return nil, apperrors.MapDBError(err)
	}

	return job, nil
}

// Delete removes the job. The status history cascades away with it.
func (r *JobRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return apperrors.MapDBError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return apperrors.NotFound("Job")
	}

	return nil
}
