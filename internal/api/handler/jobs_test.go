package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acousticlabs/trainyard/internal/api/handler"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
	"github.com/acousticlabs/trainyard/pkg/models"
)

type mockJobService struct {
	NextJobIDFunc     func(ctx context.Context) (string, error)
	CreateJobFunc     func(ctx context.Context, params lifecycle.CreateJobParams) (*models.Job, error)
	GetJobFunc        func(ctx context.Context, jobID string) (*models.Job, error)
	UpdateJobInfoFunc func(ctx context.Context, jobID string, params lifecycle.UpdateJobParams) (*models.Job, error)
	ListJobsFunc      func(ctx context.Context) ([]lifecycle.JobWithStatus, error)
	DeleteJobsFunc    func(ctx context.Context, jobIDs []string) error
}

func (m *mockJobService) NextJobID(ctx context.Context) (string, error) {
	return m.NextJobIDFunc(ctx)
}
func (m *mockJobService) CreateJob(ctx context.Context, params lifecycle.CreateJobParams) (*models.Job, error) {
	return m.CreateJobFunc(ctx, params)
}
func (m *mockJobService) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	return m.GetJobFunc(ctx, jobID)
}
func (m *mockJobService) UpdateJobInfo(ctx context.Context, jobID string, params lifecycle.UpdateJobParams) (*models.Job, error) {
	return m.UpdateJobInfoFunc(ctx, jobID, params)
}
func (m *mockJobService) ListJobs(ctx context.Context) ([]lifecycle.JobWithStatus, error) {
	return m.ListJobsFunc(ctx)
}
func (m *mockJobService) DeleteJobs(ctx context.Context, jobIDs []string) error {
	return m.DeleteJobsFunc(ctx, jobIDs)
}

func TestNextJobIDHandler(t *testing.T) {
	svc := &mockJobService{
		NextJobIDFunc: func(_ context.Context) (string, error) {
			return testJobID, nil
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/jobs/next-id", nil)
	w := httptest.NewRecorder()
	handler.NewNextJobIDHandler(svc)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decodeData(t, w, &body)
	assert.Equal(t, testJobID, body["job_id"])
}

func TestCreateJobHandler(t *testing.T) {
	var got lifecycle.CreateJobParams
	svc := &mockJobService{
		CreateJobFunc: func(_ context.Context, params lifecycle.CreateJobParams) (*models.Job, error) {
			got = params
			return &models.Job{JobID: params.JobID, JobName: params.JobName, JobType: params.JobType}, nil
		},
	}

	req := jsonRequest(t, "POST", "/api/v1/jobs",
		`{"job_id":"111112222233333","job_name":"gunshot-detector","job_date":"2026-08-01","job_type":"binary"}`)
	w := httptest.NewRecorder()
	handler.NewCreateJobHandler(svc)(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testJobID, got.JobID)
	assert.Equal(t, "gunshot-detector", got.JobName)

	var job models.Job
	decodeData(t, w, &job)
	assert.Equal(t, testJobID, job.JobID)
}

func TestCreateJobHandlerInvalidJSON(t *testing.T) {
	svc := &mockJobService{
		CreateJobFunc: func(_ context.Context, _ lifecycle.CreateJobParams) (*models.Job, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := jsonRequest(t, "POST", "/api/v1/jobs", `{not json`)
	w := httptest.NewRecorder()
	handler.NewCreateJobHandler(svc)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorCode(t, w))
}

func TestGetJobHandlerNotFound(t *testing.T) {
	svc := &mockJobService{
		GetJobFunc: func(_ context.Context, _ string) (*models.Job, error) {
			return nil, &lifecycle.Error{Kind: lifecycle.KindNotFound, Message: "job not found"}
		},
	}

	req := withJobID(httptest.NewRequest("GET", "/api/v1/jobs/"+testJobID, nil), testJobID)
	w := httptest.NewRecorder()
	handler.NewGetJobHandler(svc)(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, w))
}

// Every service error kind maps to a distinct HTTP status and code.
func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		kind       lifecycle.Kind
		wantStatus int
		wantCode   string
	}{
		{lifecycle.KindValidation, http.StatusBadRequest, "INVALID_REQUEST"},
		{lifecycle.KindNotFound, http.StatusNotFound, "NOT_FOUND"},
		{lifecycle.KindConflict, http.StatusConflict, "CONFLICT"},
		{lifecycle.KindProvider, http.StatusInternalServerError, "PROVIDER_ERROR"},
		{lifecycle.KindInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			svc := &mockJobService{
				GetJobFunc: func(_ context.Context, _ string) (*models.Job, error) {
					return nil, &lifecycle.Error{Kind: tt.kind, Message: "boom"}
				},
			}

			req := withJobID(httptest.NewRequest("GET", "/api/v1/jobs/"+testJobID, nil), testJobID)
			w := httptest.NewRecorder()
			handler.NewGetJobHandler(svc)(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeErrorCode(t, w))
		})
	}
}

func TestListJobsHandler(t *testing.T) {
	svc := &mockJobService{
		ListJobsFunc: func(_ context.Context) ([]lifecycle.JobWithStatus, error) {
			return []lifecycle.JobWithStatus{
				{Job: &models.Job{JobID: testJobID, JobName: "gunshot-detector", JobType: "binary"}},
			}, nil
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	handler.NewListJobsHandler(svc)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var jobs []map[string]any
	decodeData(t, w, &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, testJobID, jobs[0]["job_id"])
}

func TestDeleteJobsHandler(t *testing.T) {
	var got []string
	svc := &mockJobService{
		DeleteJobsFunc: func(_ context.Context, jobIDs []string) error {
			got = jobIDs
			return nil
		},
	}

	req := jsonRequest(t, "DELETE", "/api/v1/jobs", `{"job_ids":["111112222233333","999998888877777"]}`)
	w := httptest.NewRecorder()
	handler.NewDeleteJobsHandler(svc)(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"111112222233333", "999998888877777"}, got)
}

func TestUpdateJobHandler(t *testing.T) {
	svc := &mockJobService{
		UpdateJobInfoFunc: func(_ context.Context, jobID string, params lifecycle.UpdateJobParams) (*models.Job, error) {
			require.NotNil(t, params.JobName)
			return &models.Job{JobID: jobID, JobName: *params.JobName}, nil
		},
	}

	req := withJobID(jsonRequest(t, "PATCH", "/api/v1/jobs/"+testJobID,
		`{"job_name":"renamed","modified_date":"2026-08-02"}`), testJobID)
	w := httptest.NewRecorder()
	handler.NewUpdateJobHandler(svc)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var job models.Job
	decodeData(t, w, &job)
	assert.Equal(t, "renamed", job.JobName)
}
