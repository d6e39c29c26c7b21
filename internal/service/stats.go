package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/humzam/compute-jobs-dashboard/internal/core"
	"github.com/humzam/compute-jobs-dashboard/internal/data"
	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
)

// DefaultStatsStaleness is how old the snapshot may be before a read triggers
// a synchronous refresh.
const DefaultStatsStaleness = 5 * time.Minute

// StatsServiceOptions groups dependencies for StatsService.
type StatsServiceOptions struct {
	Stats        core.StatsRepository // Required: stats repository
	Staleness    time.Duration        // Optional: snapshot staleness bound, defaults to DefaultStatsStaleness
	TimeProvider data.TimeProvider    // Optional: clock override for tests
	Logger       *slog.Logger         // Optional: structured logger
}

// StatsService serves aggregate job statistics from the materialized snapshot,
// refreshing it when stale and falling back to direct aggregation when the
// snapshot cannot be used at all.
type StatsService struct {
	stats        core.StatsRepository
	staleness    time.Duration
	timeProvider data.TimeProvider
	logger       *slog.Logger
}

// NewStatsService constructs a new StatsService.
func NewStatsService(opts StatsServiceOptions) (*StatsService, error) {
	if opts.Stats == nil {
		return nil, errors.New("StatsRepository is required")
	}

	staleness := opts.Staleness
	if staleness <= 0 {
		staleness = DefaultStatsStaleness
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &StatsService{
		stats:        opts.Stats,
		staleness:    staleness,
		timeProvider: tp,
		logger:       logger.With("component", "stats_service"),
	}, nil
}

// MustNewStatsService constructs a new StatsService and panics on error.
func MustNewStatsService(opts StatsServiceOptions) *StatsService {
	svc, err := NewStatsService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// GetStats returns the aggregate statistics payload. The snapshot path is
// preferred; a stale snapshot is refreshed synchronously before serving; if
// the snapshot cannot be read or refreshed, the figures are aggregated
// directly from the base tables. The priority distribution is always computed
// fresh regardless of which path served the counts.
func (s *StatsService) GetStats(ctx context.Context) (*model.JobStatsResponse, error) {
	snap, source := s.resolveSnapshot(ctx)
	if snap == nil {
		return nil, apperrors.Unavailable("Statistics are temporarily unavailable")
	}

	dist, err := s.stats.PriorityDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &model.JobStatsResponse{
		TotalJobs:            snap.TotalJobs,
		StatusCounts:         snap.StatusCounts,
		RecentJobs:           snap.RecentJobs,
		AvgCompletionMinutes: snap.AvgCompletionMinutes,
		PriorityDistribution: formatDistribution(dist),
		LastUpdated:          snap.LastUpdated,
		Source:               source,
	}, nil
}

// resolveSnapshot picks the freshest snapshot it can get, reporting which path
// produced it. Returns nil when every path failed.
func (s *StatsService) resolveSnapshot(ctx context.Context) (*model.StatsSnapshot, string) {
	snap, err := s.stats.Snapshot(ctx)
	if err == nil && !s.stale(snap) {
		return snap, model.StatsSourceSnapshot
	}

	if err == nil {
		// Stale: refresh and re-read. A failed refresh still leaves the
		// stale row usable.
		if refreshErr := s.stats.Refresh(ctx); refreshErr != nil {
			s.logger.WarnContext(ctx, "snapshot refresh failed, serving stale snapshot", "err", refreshErr)
			return snap, model.StatsSourceSnapshot
		}
		refreshed, rereadErr := s.stats.Snapshot(ctx)
		if rereadErr != nil {
			s.logger.WarnContext(ctx, "snapshot re-read failed after refresh, serving stale snapshot", "err", rereadErr)
			return snap, model.StatsSourceSnapshot
		}
		return refreshed, model.StatsSourceRefreshed
	}

	s.logger.WarnContext(ctx, "snapshot unavailable, aggregating directly", "err", err)
	fallback, aggErr := s.stats.Aggregate(ctx)
	if aggErr != nil {
		s.logger.ErrorContext(ctx, "fallback aggregation failed", "err", aggErr)
		return nil, ""
	}
	return fallback, model.StatsSourceFallback
}

func (s *StatsService) stale(snap *model.StatsSnapshot) bool {
	if snap.LastUpdated == nil {
		return true
	}
	return s.timeProvider.Now().Sub(*snap.LastUpdated) >= s.staleness
}

// Refresh rebuilds the materialized snapshot. Exposed for the scheduled
// refresher and for operators.
func (s *StatsService) Refresh(ctx context.Context) error {
	if err := s.stats.Refresh(ctx); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "stats snapshot refreshed")
	return nil
}

func formatDistribution(dist map[int]int64) map[string]int {
	out := make(map[string]int, len(dist))
	for priority, count := range dist {
		out[strconv.Itoa(priority)] = int(count)
	}
	return out
}
