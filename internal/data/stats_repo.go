package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"

	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
)

// StatsRepo reads and maintains the job_stats materialized view.
type StatsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewStatsRepo creates a new StatsRepo instance with the given database connection and configuration.
func NewStatsRepo(db *sql.DB, cfg RepoConfig) *StatsRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &StatsRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const statsColumns = `
  total_jobs,
  pending_jobs,
  running_jobs,
  completed_jobs,
  failed_jobs,
  cancelled_jobs,
  recent_jobs,
  avg_completion_minutes,
  last_updated
`

func scanSnapshot(row *sql.Row) (*model.StatsSnapshot, error) {
	snap := &model.StatsSnapshot{}
	var avg sql.NullFloat64
	var lastUpdated sql.NullTime
	if err := row.Scan(
		&snap.TotalJobs,
		&snap.StatusCounts.Pending,
		&snap.StatusCounts.Running,
		&snap.StatusCounts.Completed,
		&snap.StatusCounts.Failed,
		&snap.StatusCounts.Cancelled,
		&snap.RecentJobs,
		&avg,
		&lastUpdated,
	); err != nil {
		return nil, err
	}
	if avg.Valid {
		v := avg.Float64
		snap.AvgCompletionMinutes = &v
	}
	if lastUpdated.Valid {
		t := lastUpdated.Time.UTC()
		snap.LastUpdated = &t
	}
	return snap, nil
}

// Snapshot reads the materialized stats row.
func (r *StatsRepo) Snapshot(ctx context.Context) (*model.StatsSnapshot, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+statsColumns+` FROM job_stats`)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Stats snapshot")
		}
		return nil, apperrors.MapDBError(err)
	}
	return snap, nil
}

// Refresh rebuilds the materialized view. CONCURRENTLY keeps the old row
// readable while the new one is computed.
func (r *StatsRepo) Refresh(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY job_stats`); err != nil {
		return apperrors.MapDBError(fmt.Errorf("refresh job_stats: %w", err))
	}
	return nil
}

// Aggregate computes the statistics directly from the base tables. Used when
// the materialized snapshot is missing or cannot be read.
func (r *StatsRepo) Aggregate(ctx context.Context) (*model.StatsSnapshot, error) {
	recentCutoff := r.timeProvider.Now().UTC().Add(-24 * time.Hour)

	row := r.DB.QueryRowContext(ctx, `
    WITH latest_statuses AS (
      SELECT DISTINCT ON (job_id)
        job_id,
        status_type
      FROM job_statuses
      ORDER BY job_id, timestamp DESC, id DESC
    )
    SELECT
      count(j.id) AS total_jobs,
      count(*) FILTER (WHERE ls.status_type = 'PENDING') AS pending_jobs,
      count(*) FILTER (WHERE ls.status_type = 'RUNNING') AS running_jobs,
      count(*) FILTER (WHERE ls.status_type = 'COMPLETED') AS completed_jobs,
      count(*) FILTER (WHERE ls.status_type = 'FAILED') AS failed_jobs,
      count(*) FILTER (WHERE ls.status_type = 'CANCELLED') AS cancelled_jobs,
      count(*) FILTER (WHERE j.created_at >= $1) AS recent_jobs,
      avg(EXTRACT(EPOCH FROM (j.completed_at - j.created_at)) / 60.0)
        FILTER (WHERE j.completed_at IS NOT NULL) AS avg_completion_minutes,
      NULL::timestamptz AS last_updated
    FROM jobs j
    LEFT JOIN latest_statuses ls ON ls.job_id = j.id
  `, recentCutoff)

	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return snap, nil
}

// PriorityDistribution returns job counts grouped by priority. Always computed
// fresh, never from the snapshot.
func (r *StatsRepo) PriorityDistribution(ctx context.Context) (map[int]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
    SELECT priority, count(*)
    FROM jobs
    GROUP BY priority
    ORDER BY priority
  `)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("query priority distribution: %w", err))
	}
	defer rows.Close()

	dist := make(map[int]int64)
	for rows.Next() {
		var priority int
		var count int64
		if scanErr := rows.Scan(&priority, &count); scanErr != nil {
			return nil, apperrors.MapDBError(fmt.Errorf("scan priority row: %w", scanErr))
		}
		dist[priority] = count
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperrors.MapDBError(rowsErr)
	}

	return dist, nil
}
