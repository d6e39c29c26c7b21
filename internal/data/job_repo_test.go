package data_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humzam/compute-jobs-dashboard/internal/data"
	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
	"github.com/humzam/compute-jobs-dashboard/internal/testutil"
)

func intPtr(v int) *int { return &v }

func statusPtr(s model.StatusType) *model.StatusType { return &s }

func createJob(t *testing.T, repo *data.JobRepo, name string, priority int) *model.Job {
	t.Helper()
	job, err := repo.Create(context.Background(), &model.CreateJobRequest{
		Name:     name,
		Priority: intPtr(priority),
	})
	require.NoError(t, err)
	return job
}

func TestJobRepoCreate(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := data.NewJobRepo(db, data.RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, &model.CreateJobRequest{
			Name:                 "render frames",
			Description:          "render frames 1-100",
			ScheduledAt:          timePtr(time.Now().Add(time.Hour)),
			ResourceRequirements: []byte(`{"cpu": 4, "memory_gb": 16}`),
		})
		require.NoError(t, err)

		assert.NotZero(t, job.ID)
		assert.Equal(t, "render frames", job.Name)
		assert.Equal(t, model.DefaultPriority, job.Priority)
		assert.NotNil(t, job.ScheduledAt)
		assert.JSONEq(t, `{"cpu": 4, "memory_gb": 16}`, string(job.ResourceRequirements))

		// Creation seeds the status log with a PENDING entry.
		require.NotNil(t, job.LatestStatus)
		assert.Equal(t, model.StatusPending, job.LatestStatus.StatusType)

		fetched, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, fetched.ID)
		require.NotNil(t, fetched.LatestStatus)
		assert.Equal(t, model.StatusPending, fetched.LatestStatus.StatusType)
	})
}

func TestJobRepoCreateValidation(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := data.NewJobRepo(db, data.RepoConfig{})

		_, err := repo.Create(context.Background(), &model.CreateJobRequest{Name: "   "})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		_, err = repo.Create(context.Background(), &model.CreateJobRequest{Name: "x", Priority: intPtr(11)})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestJobRepoGetByIDNotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := data.NewJobRepo(db, data.RepoConfig{})

		_, err := repo.GetByID(context.Background(), 999999)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestJobRepoGetByIDReflectsLatestStatus(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := data.NewJobRepo(db, data.RepoConfig{})
		statuses := data.NewStatusRepo(db, data.RepoConfig{})
		ctx := context.Background()

		job := createJob(t, jobs, "migrate data", 3)

		_, err := statuses.Append(ctx, job.ID, &model.AppendStatusRequest{
			StatusType: model.StatusRunning,
			Progress:   intPtr(25),
		})
		require.NoError(t, err)

		fetched, err := jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.LatestStatus)
		assert.Equal(t, model.StatusRunning, fetched.LatestStatus.StatusType)
		require.NotNil(t, fetched.LatestStatus.Progress)
		assert.Equal(t, 25, *fetched.LatestStatus.Progress)
	})
}

func TestJobRepoList(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := data.NewJobRepo(db, data.RepoConfig{})
		statuses := data.NewStatusRepo(db, data.RepoConfig{})
		ctx := context.Background()

		low := createJob(t, jobs, "cleanup temp files", 2)
		mid := createJob(t, jobs, "transcode video", 5)
		high := createJob(t, jobs, "urgent export", 9)

		_, err := statuses.Append(ctx, mid.ID, &model.AppendStatusRequest{StatusType: model.StatusRunning})
		require.NoError(t, err)

		t.Run("default ordering is priority desc", func(t *testing.T) {
			page, listErr := jobs.List(ctx, &model.JobListOptions{})
			require.NoError(t, listErr)
			assert.Equal(t, 3, page.Count)
			require.Len(t, page.Jobs, 3)
			assert.Equal(t, high.ID, page.Jobs[0].ID)
			assert.Equal(t, low.ID, page.Jobs[2].ID)
		})

		t.Run("priority filter", func(t *testing.T) {
			page, listErr := jobs.List(ctx, &model.JobListOptions{Priority: intPtr(9)})
			require.NoError(t, listErr)
			assert.Equal(t, 1, page.Count)
			require.Len(t, page.Jobs, 1)
			assert.Equal(t, high.ID, page.Jobs[0].ID)
		})

		t.Run("latest status filter", func(t *testing.T) {
			page, listErr := jobs.List(ctx, &model.JobListOptions{Status: statusPtr(model.StatusRunning)})
			require.NoError(t, listErr)
			assert.Equal(t, 1, page.Count)
			require.Len(t, page.Jobs, 1)
			assert.Equal(t, mid.ID, page.Jobs[0].ID)

			page, listErr = jobs.List(ctx, &model.JobListOptions{Status: statusPtr(model.StatusPending)})
			require.NoError(t, listErr)
			assert.Equal(t, 2, page.Count)
		})

		t.Run("search over name and description", func(t *testing.T) {
			page, listErr := jobs.List(ctx, &model.JobListOptions{Search: "TRANSCODE"})
			require.NoError(t, listErr)
			assert.Equal(t, 1, page.Count)
			require.Len(t, page.Jobs, 1)
			assert.Equal(t, mid.ID, page.Jobs[0].ID)
		})

		t.Run("created date range", func(t *testing.T) {
			after := time.Now().Add(-time.Hour)
			before := time.Now().Add(time.Hour)
			page, listErr := jobs.List(ctx, &model.JobListOptions{
				CreatedAfter:  &after,
				CreatedBefore: &before,
			})
			require.NoError(t, listErr)
			assert.Equal(t, 3, page.Count)

			future := time.Now().Add(time.Hour)
			page, listErr = jobs.List(ctx, &model.JobListOptions{CreatedAfter: &future})
			require.NoError(t, listErr)
			assert.Equal(t, 0, page.Count)
			assert.Empty(t, page.Jobs)
		})

		t.Run("explicit ordering", func(t *testing.T) {
			page, listErr := jobs.List(ctx, &model.JobListOptions{
				Ordering: []model.OrderField{{Column: "priority"}},
			})
			require.NoError(t, listErr)
			require.Len(t, page.Jobs, 3)
			assert.Equal(t, low.ID, page.Jobs[0].ID)
		})

		t.Run("pagination keeps total count", func(t *testing.T) {
			page, listErr := jobs.List(ctx, &model.JobListOptions{Limit: 2})
			require.NoError(t, listErr)
			assert.Equal(t, 3, page.Count)
			assert.Len(t, page.Jobs, 2)

			page, listErr = jobs.List(ctx, &model.JobListOptions{Limit: 2, Offset: 2})
			require.NoError(t, listErr)
			assert.Equal(t, 3, page.Count)
			assert.Len(t, page.Jobs, 1)
		})
	})
}

func TestJobRepoDelete(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := data.NewJobRepo(db, data.RepoConfig{})
		statuses := data.NewStatusRepo(db, data.RepoConfig{})
		ctx := context.Background()

		job := createJob(t, jobs, "doomed", 5)
		_, err := statuses.Append(ctx, job.ID, &model.AppendStatusRequest{StatusType: model.StatusRunning})
		require.NoError(t, err)

		require.NoError(t, jobs.Delete(ctx, job.ID))

		_, err = jobs.GetByID(ctx, job.ID)
		assert.True(t, apperrors.IsNotFound(err))

		// The status log cascades away with the job.
		var count int
		require.NoError(t, db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM job_statuses WHERE job_id = $1`, job.ID).Scan(&count))
		assert.Zero(t, count)

		err = jobs.Delete(ctx, job.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func timePtr(v time.Time) *time.Time { return &v }
