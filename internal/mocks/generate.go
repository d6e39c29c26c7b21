// Package mocks provides mock implementations for testing the job tracking system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
// This creates MockJobRepository with methods for all JobRepository interface methods:
// Create, GetByID, List, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/humzam/compute-jobs-dashboard/internal/core JobRepository

// Generate mock for StatusRepository interface from internal/core package.
// This creates MockStatusRepository with methods for all StatusRepository interface methods:
// Append, Latest, LatestForEach, ListByJob
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=status_repository_mock.go github.com/humzam/compute-jobs-dashboard/internal/core StatusRepository

// Generate mock for StatsRepository interface from internal/core package.
// This creates MockStatsRepository with methods for all StatsRepository interface methods:
// Snapshot, Refresh, Aggregate, PriorityDistribution
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=stats_repository_mock.go github.com/humzam/compute-jobs-dashboard/internal/core StatsRepository

// Generate mock for CacheRepository interface from internal/core package.
// This creates MockCacheRepository with methods for all CacheRepository interface methods:
// Set, Get, Delete, Health
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/humzam/compute-jobs-dashboard/internal/core CacheRepository
