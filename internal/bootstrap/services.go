package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/humzam/compute-jobs-dashboard/config"
	"github.com/humzam/compute-jobs-dashboard/internal/core"
	"github.com/humzam/compute-jobs-dashboard/internal/data"
	httpx "github.com/humzam/compute-jobs-dashboard/internal/http"
	"github.com/humzam/compute-jobs-dashboard/internal/ratelimit"
	"github.com/humzam/compute-jobs-dashboard/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs    *service.JobService
	Stats   *service.StatsService
	Limiter *ratelimit.Limiter
	Cache   core.CacheRepository
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices constructs the repositories and services from shared infrastructure.
func NewServices(deps *ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repoCfg := data.RepoConfig{Logger: logger}
	jobRepo := data.NewJobRepo(deps.DB, repoCfg)
	statusRepo := data.NewStatusRepo(deps.DB, repoCfg)
	statsRepo := data.NewStatsRepo(deps.DB, repoCfg)

	var cache core.CacheRepository
	var limiter *ratelimit.Limiter
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient)
		if deps.Config.RateLimit.Enabled {
			limiter = ratelimit.NewLimiter(ratelimit.Options{
				Cache:    cache,
				Policies: deps.Config.RateLimit.Policies(),
				Exempt:   deps.Config.RateLimit.Exempt,
				Logger:   logger,
			})
		}
	}

	return ServiceContainer{
		Jobs: service.MustNewJobService(service.JobServiceOptions{
			Jobs:     jobRepo,
			Statuses: statusRepo,
			Logger:   logger,
		}),
		Stats: service.MustNewStatsService(service.StatsServiceOptions{
			Stats:     statsRepo,
			Staleness: deps.Config.Stats.Staleness,
			Logger:    logger,
		}),
		Limiter: limiter,
		Cache:   cache,
	}
}

// RunConfig groups everything needed to run the application services.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// Run starts the HTTP server and the scheduled stats refresher, blocking
// until a shutdown signal arrives or a service fails.
func Run(ctx context.Context, cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("run config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := httpx.NewRouter(httpx.RouterServices{
		Jobs:    cfg.Services.Jobs,
		Stats:   cfg.Services.Stats,
		Limiter: cfg.Services.Limiter,
		DB:      cfg.DB,
		Cache:   cfg.Services.Cache,
		Logger:  logger,
	})

	server := &http.Server{
		Addr:         cfg.Config.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Config.HTTP.ReadTimeout,
		WriteTimeout: cfg.Config.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Config.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	if schedule := cfg.Config.Stats.RefreshSchedule; schedule != "" {
		refresher, err := startStatsRefresher(gctx, statsRefresherConfig{
			Schedule: schedule,
			Stats:    cfg.Services.Stats,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			<-refresher.Stop().Done()
			return nil
		})
	}

	return g.Wait()
}

type statsRefresherConfig struct {
	Schedule string
	Stats    *service.StatsService
	Logger   *slog.Logger
}

// startStatsRefresher schedules periodic snapshot refreshes so interactive
// stats reads rarely pay the synchronous refresh cost.
func startStatsRefresher(ctx context.Context, cfg statsRefresherConfig) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.Schedule, func() {
		if refreshErr := cfg.Stats.Refresh(ctx); refreshErr != nil {
			cfg.Logger.WarnContext(ctx, "scheduled stats refresh failed", "err", refreshErr)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	cfg.Logger.InfoContext(ctx, "stats refresher scheduled", "schedule", cfg.Schedule)
	return c, nil
}
