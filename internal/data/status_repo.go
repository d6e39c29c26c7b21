package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"

	"github.com/humzam/compute-jobs-dashboard/internal/data/pgxutil"
	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
)

// StatusRepo provides database operations for the append-only status log.
type StatusRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewStatusRepo creates a new StatusRepo instance with the given database connection and configuration.
func NewStatusRepo(db *sql.DB, cfg RepoConfig) *StatusRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &StatusRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const statusColumns = `id, job_id, status_type, timestamp, message, progress`

type statusRowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(scanner statusRowScanner, status *model.JobStatus) error {
	var progress sql.NullInt64
	if err := scanner.Scan(
		&status.ID,
		&status.JobID,
		&status.StatusType,
		&status.Timestamp,
		&status.Message,
		&progress,
	); err != nil {
		return err
	}
	status.Timestamp = status.Timestamp.UTC()
	if progress.Valid {
		p := int(progress.Int64)
		status.Progress = &p
	}
	return nil
}

// Append records a new status entry for the job. Terminal statuses also stamp
// the job's completed_at and updated_at in the same transaction, so readers
// never observe a terminal status without its completion time.
func (r *StatusRepo) Append(
	ctx context.Context,
	jobID int64,
	req *model.AppendStatusRequest,
) (*model.JobStatus, error) {
	if req == nil {
		return nil, errors.New("append status request is required")
	}
	if validateErr := req.Validate(); validateErr != nil {
		return nil, validateErr
	}

	var status *model.JobStatus
	txErr := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			now := r.timeProvider.Now().UTC()

			inserted := &model.JobStatus{}
			row := tx.QueryRowContext(ctx, `
        INSERT INTO job_statuses (job_id, status_type, timestamp, message, progress)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+statusColumns,
				jobID, req.StatusType, now, req.Message, req.Progress)
			if scanErr := scanStatus(row, inserted); scanErr != nil {
				return fmt.Errorf("insert status: %w", scanErr)
			}

			update := `UPDATE jobs SET updated_at = $2 WHERE id = $1`
			args := []any{jobID, now}
			if req.StatusType.Terminal() {
				// completed_at keeps the first terminal time; later
				// terminal appends never move it.
				update = `UPDATE jobs SET updated_at = $2, completed_at = COALESCE(completed_at, $2) WHERE id = $1`
			}
			if _, updateErr := tx.ExecContext(ctx, update, args...); updateErr != nil {
				return fmt.Errorf("touch job: %w", updateErr)
			}

			status = inserted
			return nil
		},
	})
	if txErr != nil {
		return nil, apperrors.MapDBError(txErr)
	}

	return status, nil
}

// Latest returns the most recent status entry for the job, or nil if the job
// has no entries. Ties on timestamp break toward the higher id.
func (r *StatusRepo) Latest(ctx context.Context, jobID int64) (*model.JobStatus, error) {
	row := r.DB.QueryRowContext(ctx, `
    SELECT `+statusColumns+`
    FROM job_statuses
    WHERE job_id = $1
    ORDER BY timestamp DESC, id DESC
    LIMIT 1
  `, jobID)

	status := &model.JobStatus{}
	if err := scanStatus(row, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapDBError(err)
	}

	return status, nil
}

// LatestForEach returns the most recent status entry for each of the given
// jobs in a single query. Jobs without entries are absent from the map.
func (r *StatusRepo) LatestForEach(ctx context.Context, jobIDs []int64) (map[int64]*model.JobStatus, error) {
	result := make(map[int64]*model.JobStatus, len(jobIDs))
	if len(jobIDs) == 0 {
		return result, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
    SELECT DISTINCT ON (job_id) `+statusColumns+`
    FROM job_statuses
    WHERE job_id = ANY($1)
    ORDER BY job_id, timestamp DESC, id DESC
  `, jobIDs)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("query latest statuses: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		status := &model.JobStatus{}
		if scanErr := scanStatus(rows, status); scanErr != nil {
			return nil, apperrors.MapDBError(fmt.Errorf("scan latest status: %w", scanErr))
		}
		result[status.JobID] = status
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(rowsErr)
	}

	return result, nil
}

// ListByJob returns the job's full status history, oldest first.
// Returns NotFound if the job itself does not exist.
func (r *StatusRepo) ListByJob(ctx context.Context, jobID int64) ([]*model.JobStatus, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, jobID).Scan(&exists); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	if !exists {
		return nil, apperrors.NotFound("Job")
	}

	rows, err := r.DB.QueryContext(ctx, `
    SELECT `+statusColumns+`
    FROM job_statuses
    WHERE job_id = $1
    ORDER BY timestamp ASC, id ASC
  `, jobID)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("query statuses: %w", err))
	}
	defer rows.Close()

	var statuses []*model.JobStatus
	for rows.Next() {
		status := &model.JobStatus{}
		if scanErr := scanStatus(rows, status); scanErr != nil {
			return nil, apperrors.MapDBError(fmt.Errorf("scan status: %w", scanErr))
		}
		statuses = append(statuses, status)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(rowsErr)
	}

	return statuses, nil
}
