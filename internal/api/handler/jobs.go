package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// JobService is the slice of the lifecycle service the job handlers use.
type JobService interface {
	NextJobID(ctx context.Context) (string, error)
	CreateJob(ctx context.Context, params lifecycle.CreateJobParams) (*models.Job, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	UpdateJobInfo(ctx context.Context, jobID string, params lifecycle.UpdateJobParams) (*models.Job, error)
	ListJobs(ctx context.Context) ([]lifecycle.JobWithStatus, error)
	DeleteJobs(ctx context.Context, jobIDs []string) error
}

// NewNextJobIDHandler returns the handler for GET /api/v1/jobs/next-id.
func NewNextJobIDHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := svc.NextJobID(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]string{"job_id": id})
	}
}

// NewCreateJobHandler returns the handler for POST /api/v1/jobs.
func NewCreateJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params lifecycle.CreateJobParams
		if !decodeBody(w, r, &params) {
			return
		}
		job, err := svc.CreateJob(r.Context(), params)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.Created(w, job)
	}
}

// NewGetJobHandler returns the handler for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := svc.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewUpdateJobHandler returns the handler for PATCH /api/v1/jobs/{jobID}.
func NewUpdateJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params lifecycle.UpdateJobParams
		if !decodeBody(w, r, &params) {
			return
		}
		job, err := svc.UpdateJobInfo(r.Context(), chi.URLParam(r, "jobID"), params)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewListJobsHandler returns the handler for GET /api/v1/jobs.
func NewListJobsHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := svc.ListJobs(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, jobs)
	}
}

// NewDeleteJobsHandler returns the handler for DELETE /api/v1/jobs.
func NewDeleteJobsHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobIDs []string `json:"job_ids"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := svc.DeleteJobs(r.Context(), req.JobIDs); err != nil {
			serviceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
