package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/humzam/compute-jobs-dashboard/internal/errors"
)

func TestStatusTypeValid(t *testing.T) {
	for _, st := range StatusTypes {
		assert.True(t, st.Valid(), "expected %s to be valid", st)
	}
	assert.False(t, StatusType("QUEUED").Valid())
	assert.False(t, StatusType("").Valid())
}

func TestStatusTypeTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusTypeUnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StatusType
		wantErr bool
	}{
		{name: "uppercase", input: `"RUNNING"`, want: StatusRunning},
		{name: "lowercase", input: `"completed"`, want: StatusCompleted},
		{name: "mixed case with spaces", input: `" Failed "`, want: StatusFailed},
		{name: "unknown", input: `"paused"`, wantErr: true},
		{name: "empty", input: `""`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st StatusType
			err := json.Unmarshal([]byte(tt.input), &st)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, st)
		})
	}
}

func TestCreateJobRequestValidate(t *testing.T) {
	lowPriority := 0
	highPriority := 11
	validPriority := 7

	tests := []struct {
		name      string
		req       CreateJobRequest
		wantField string
	}{
		{name: "valid", req: CreateJobRequest{Name: "render frames"}},
		{name: "valid with priority", req: CreateJobRequest{Name: "render", Priority: &validPriority}},
		{name: "missing name", req: CreateJobRequest{}, wantField: "name"},
		{name: "blank name", req: CreateJobRequest{Name: "   "}, wantField: "name"},
		{name: "priority too low", req: CreateJobRequest{Name: "x", Priority: &lowPriority}, wantField: "priority"},
		{name: "priority too high", req: CreateJobRequest{Name: "x", Priority: &highPriority}, wantField: "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantField, apperrors.GetField(err))
		})
	}
}

func TestCreateJobRequestPriorityOrDefault(t *testing.T) {
	req := CreateJobRequest{Name: "x"}
	assert.Equal(t, DefaultPriority, req.PriorityOrDefault())

	p := 2
	req.Priority = &p
	assert.Equal(t, 2, req.PriorityOrDefault())
}

func TestAppendStatusRequestValidate(t *testing.T) {
	negative := -1
	over := 101
	valid := 50

	tests := []struct {
		name    string
		req     AppendStatusRequest
		wantErr bool
	}{
		{name: "valid", req: AppendStatusRequest{StatusType: StatusRunning}},
		{name: "valid with progress", req: AppendStatusRequest{StatusType: StatusRunning, Progress: &valid}},
		{name: "invalid status", req: AppendStatusRequest{StatusType: "NOPE"}, wantErr: true},
		{name: "negative progress", req: AppendStatusRequest{StatusType: StatusRunning, Progress: &negative}, wantErr: true},
		{name: "progress over 100", req: AppendStatusRequest{StatusType: StatusRunning, Progress: &over}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBulkStatusUpdateRequestValidate(t *testing.T) {
	err := (&BulkStatusUpdateRequest{}).Validate()
	require.Error(t, err)
	assert.Equal(t, "job_ids", apperrors.GetField(err))

	err = (&BulkStatusUpdateRequest{
		JobIDs: []int64{1, 2},
		Status: AppendStatusRequest{StatusType: "NOPE"},
	}).Validate()
	require.Error(t, err)

	err = (&BulkStatusUpdateRequest{
		JobIDs: []int64{1, 2},
		Status: AppendStatusRequest{StatusType: StatusCancelled},
	}).Validate()
	require.NoError(t, err)
}

func TestJobStatusJSONOmitsJobID(t *testing.T) {
	raw, err := json.Marshal(&JobStatus{ID: 9, JobID: 3, StatusType: StatusPending})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "job_id")
}

func TestStatusCountsSum(t *testing.T) {
	counts := StatusCounts{Pending: 1, Running: 2, Completed: 3, Failed: 4, Cancelled: 5}
	assert.Equal(t, 15, counts.Sum())
}
