package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/humzam/compute-jobs-dashboard/internal/domain/model"
	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
	"github.com/humzam/compute-jobs-dashboard/internal/mocks"
	"github.com/humzam/compute-jobs-dashboard/internal/service"
)

type routerMocks struct {
	jobs     *mocks.MockJobRepository
	statuses *mocks.MockStatusRepository
	stats    *mocks.MockStatsRepository
}

func newTestRouter(t *testing.T) (http.Handler, routerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := routerMocks{
		jobs:     mocks.NewMockJobRepository(ctrl),
		statuses: mocks.NewMockStatusRepository(ctrl),
		stats:    mocks.NewMockStatsRepository(ctrl),
	}

	router := NewRouter(RouterServices{
		Jobs: service.MustNewJobService(service.JobServiceOptions{
			Jobs:     m.jobs,
			Statuses: m.statuses,
		}),
		Stats: service.MustNewStatsService(service.StatsServiceOptions{
			Stats: m.stats,
		}),
	})
	return router, m
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleJob(id int64) *model.Job {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &model.Job{
		ID:        id,
		Name:      "transcode",
		Priority:  model.DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
		LatestStatus: &model.JobStatus{
			ID:         id * 10,
			JobID:      id,
			StatusType: model.StatusPending,
			Timestamp:  now,
		},
	}
}

func TestListJobs(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().List(gomock.Any(), gomock.Any()).
		Return(&model.JobPage{Count: 2, Jobs: []*model.Job{sampleJob(1), sampleJob(2)}}, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/jobs/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count    int               `json:"count"`
		Next     *string           `json:"next"`
		Previous *string           `json:"previous"`
		Results  []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Nil(t, body.Next)
	assert.Nil(t, body.Previous)
	assert.Len(t, body.Results, 2)
	assert.Contains(t, string(body.Results[0]), `"latest_status"`)
}

func TestListJobsPaginationLinks(t *testing.T) {
	router, m := newTestRouter(t)

	jobs := make([]*model.Job, DefaultPageSize)
	for i := range jobs {
		jobs[i] = sampleJob(int64(i + 21))
	}
	m.jobs.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, opts *model.JobListOptions) (*model.JobPage, error) {
			assert.Equal(t, DefaultPageSize, opts.Offset)
			return &model.JobPage{Count: 50, Jobs: jobs}, nil
		})

	rec := doRequest(t, router, http.MethodGet, "/api/jobs/?page=2&priority=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body jobListEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Next)
	assert.Contains(t, *body.Next, "page=3")
	assert.Contains(t, *body.Next, "priority=5")
	require.NotNil(t, body.Previous)
	assert.NotContains(t, *body.Previous, "page=")
}

func TestCreateJob(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *model.CreateJobRequest) (*model.Job, error) {
			assert.Equal(t, "transcode", req.Name)
			return sampleJob(1), nil
		})

	rec := doRequest(t, router, http.MethodPost, "/api/jobs/", `{"name":"transcode"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, int64(1), job.ID)
	require.NotNil(t, job.LatestStatus)
	assert.Equal(t, model.StatusPending, job.LatestStatus.StatusType)
}

func TestCreateJobValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{}`},
		{name: "bad priority", body: `{"name":"x","priority":42}`},
		{name: "malformed json", body: `{"name":`},
		{name: "unknown field", body: `{"name":"x","nope":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/jobs/", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "validation", body.Error)
		})
	}
}

func TestGetJob(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().GetByID(gomock.Any(), int64(7)).Return(sampleJob(7), nil)
	rec := doRequest(t, router, http.MethodGet, "/api/jobs/7/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	m.jobs.EXPECT().GetByID(gomock.Any(), int64(8)).Return(nil, apperrors.NotFound("Job"))
	rec = doRequest(t, router, http.MethodGet, "/api/jobs/8/", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/jobs/abc/", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateJobStatus(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			router, m := newTestRouter(t)

			gomock.InOrder(
				m.statuses.EXPECT().Append(gomock.Any(), int64(7), gomock.Any()).
					DoAndReturn(func(_ any, _ int64, req *model.AppendStatusRequest) (*model.JobStatus, error) {
						assert.Equal(t, model.StatusRunning, req.StatusType)
						return &model.JobStatus{ID: 71, JobID: 7, StatusType: model.StatusRunning}, nil
					}),
				m.jobs.EXPECT().GetByID(gomock.Any(), int64(7)).Return(sampleJob(7), nil),
			)

			rec := doRequest(t, router, method, "/api/jobs/7/", `{"status_type":"running","progress":40}`)
			require.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestUpdateJobStatusNotFound(t *testing.T) {
	router, m := newTestRouter(t)

	m.statuses.EXPECT().Append(gomock.Any(), int64(99), gomock.Any()).
		Return(nil, apperrors.NotFound("Job"))

	rec := doRequest(t, router, http.MethodPut, "/api/jobs/99/", `{"status_type":"FAILED"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteJob(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().Delete(gomock.Any(), int64(7)).Return(nil)
	rec := doRequest(t, router, http.MethodDelete, "/api/jobs/7/", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	m.jobs.EXPECT().Delete(gomock.Any(), int64(8)).Return(apperrors.NotFound("Job"))
	rec = doRequest(t, router, http.MethodDelete, "/api/jobs/8/", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkUpdateStatus(t *testing.T) {
	router, m := newTestRouter(t)

	m.statuses.EXPECT().Append(gomock.Any(), int64(1), gomock.Any()).
		Return(&model.JobStatus{ID: 11, JobID: 1}, nil)
	m.statuses.EXPECT().Append(gomock.Any(), int64(2), gomock.Any()).
		Return(nil, apperrors.NotFound("Job"))

	rec := doRequest(t, router, http.MethodPost, "/api/jobs/bulk_status_update/",
		`{"job_ids":[1,2],"status":{"status_type":"CANCELLED"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body model.BulkStatusUpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.UpdatedJobs)
}

func TestListJobStatuses(t *testing.T) {
	router, m := newTestRouter(t)

	history := []*model.JobStatus{
		{ID: 1, JobID: 7, StatusType: model.StatusPending},
		{ID: 2, JobID: 7, StatusType: model.StatusRunning},
	}
	m.statuses.EXPECT().ListByJob(gomock.Any(), int64(7)).Return(history, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/jobs/7/statuses/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []*model.JobStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, model.StatusPending, body[0].StatusType)
}

func TestTrailingSlashAliases(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().List(gomock.Any(), gomock.Any()).
		Return(&model.JobPage{Count: 0, Jobs: []*model.Job{}}, nil).Times(2)

	for _, path := range []string{"/api/jobs", "/api/jobs/"} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}
