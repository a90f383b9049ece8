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

// TrainService is the slice of the lifecycle service the training handlers
// use.
type TrainService interface {
	SetTrainConfig(ctx context.Context, jobID string, params lifecycle.TrainConfigParams) (*models.Job, error)
	ClearTrainConfig(ctx context.Context, jobID string) error
	LaunchTraining(ctx context.Context, jobID string) (string, error)
	TrainingStatus(ctx context.Context, jobID string) (compute.JobDetails, error)
	PurgeTrainingData(ctx context.Context, jobID string) error
	TrainingPlots(ctx context.Context, jobID string) (map[string]string, error)
}

// NewSetTrainConfigHandler returns the handler for
// POST /api/v1/jobs/{jobID}/train/config.
func NewSetTrainConfigHandler(svc TrainService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params lifecycle.TrainConfigParams
		if !decodeBody(w, r, &params) {
			return
		}
		job, err := svc.SetTrainConfig(r.Context(), chi.URLParam(r, "jobID"), params)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewClearTrainConfigHandler returns the handler for
// DELETE /api/v1/jobs/{jobID}/train/config.
func NewClearTrainConfigHandler(svc TrainService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearTrainConfig(r.Context(), chi.URLParam(r, "jobID")); err != nil {
			serviceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewLaunchTrainingHandler returns the handler for
// POST /api/v1/jobs/{jobID}/train.
func NewLaunchTrainingHandler(svc TrainService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle, err := svc.LaunchTraining(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.Accepted(w, map[string]string{"train_job_name": handle})
	}
}

// NewTrainingStatusHandler returns the handler for
// GET /api/v1/jobs/{jobID}/train/status.
func NewTrainingStatusHandler(svc TrainService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.TrainingStatus(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, toJobStatus(details))
	}
}

// NewPurgeTrainingHandler returns the handler for
// DELETE /api/v1/jobs/{jobID}/train/data.
func NewPurgeTrainingHandler(svc TrainService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.PurgeTrainingData(r.Context(), chi.URLParam(r, "jobID")); err != nil {
			serviceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewTrainingPlotsHandler returns the handler for
// GET /api/v1/jobs/{jobID}/train/plots.
func NewTrainingPlotsHandler(svc TrainService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plots, err := svc.TrainingPlots(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, plots)
	}
}
