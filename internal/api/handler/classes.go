package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// ClassService is the slice of the lifecycle service the class and
// preprocessing handlers use.
type ClassService interface {
	AddClasses(ctx context.Context, jobID string, params lifecycle.AddClassesParams) (*models.Job, error)
	AutoAddClasses(ctx context.Context, jobID string, params lifecycle.AutoAddClassesParams) (*models.Job, error)
	RemoveClasses(ctx context.Context, jobID string) error
	LaunchPreprocess(ctx context.Context, jobID string) (string, error)
	PreprocessStatus(ctx context.Context, jobID string) (compute.JobDetails, error)
	PreprocessedDatasetURL(ctx context.Context, jobID string) (string, error)
}

// NewAddClassesHandler returns the handler for POST /api/v1/jobs/{jobID}/classes.
func NewAddClassesHandler(svc ClassService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params lifecycle.AddClassesParams
		if !decodeBody(w, r, &params) {
			return
		}
		job, err := svc.AddClasses(r.Context(), chi.URLParam(r, "jobID"), params)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewAutoAddClassesHandler returns the handler for
// POST /api/v1/jobs/{jobID}/classes/auto.
func NewAutoAddClassesHandler(svc ClassService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params lifecycle.AutoAddClassesParams
		if !decodeBody(w, r, &params) {
			return
		}
		job, err := svc.AutoAddClasses(r.Context(), chi.URLParam(r, "jobID"), params)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewRemoveClassesHandler returns the handler for
// DELETE /api/v1/jobs/{jobID}/classes.
func NewRemoveClassesHandler(svc ClassService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveClasses(r.Context(), chi.URLParam(r, "jobID")); err != nil {
			serviceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewLaunchPreprocessHandler returns the handler for
// POST /api/v1/jobs/{jobID}/preprocess.
func NewLaunchPreprocessHandler(svc ClassService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, err := svc.LaunchPreprocess(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.Accepted(w, map[string]string{"preprocess_job_name": handle})
	}
}

// NewPreprocessStatusHandler returns the handler for
// GET /api/v1/jobs/{jobID}/preprocess/status.
func NewPreprocessStatusHandler(svc ClassService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.PreprocessStatus(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, toJobStatus(details))
	}
}

// NewPreprocessedDatasetHandler returns the handler for
// GET /api/v1/jobs/{jobID}/preprocess/dataset.
func NewPreprocessedDatasetHandler(svc ClassService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := svc.PreprocessedDatasetURL(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]string{"url": url})
	}
}
