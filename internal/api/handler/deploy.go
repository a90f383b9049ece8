package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// DeployService is the slice of the lifecycle service the deployment
// handlers use.
type DeployService interface {
	SetDeployConfig(ctx context.Context, jobID string, params lifecycle.DeployConfigParams) (*models.Job, error)
	ClearDeployConfig(ctx context.Context, jobID string) error
	Deploy(ctx context.Context, jobID string) (string, error)
	DeployStatus(ctx context.Context, jobID string) (string, error)
	ScaleEndpoint(ctx context.Context, jobID string, instanceCount int) error
	Teardown(ctx context.Context, jobID string) error
}

// NewSetDeployConfigHandler returns the handler for
// POST /api/v1/jobs/{jobID}/deploy/config.
func NewSetDeployConfigHandler(svc DeployService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params lifecycle.DeployConfigParams
		if !decodeBody(w, r, &params) {
			return
		}
		job, err := svc.SetDeployConfig(r.Context(), chi.URLParam(r, "jobID"), params)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewClearDeployConfigHandler returns the handler for
// DELETE /api/v1/jobs/{jobID}/deploy/config.
func NewClearDeployConfigHandler(svc DeployService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearDeployConfig(r.Context(), chi.URLParam(r, "jobID")); err != nil {
			serviceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewDeployHandler returns the handler for POST /api/v1/jobs/{jobID}/deploy.
func NewDeployHandler(svc DeployService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint, err := svc.Deploy(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.Accepted(w, map[string]string{"endpoint_name": endpoint})
	}
}

// NewDeployStatusHandler returns the handler for
// GET /api/v1/jobs/{jobID}/deploy/status.
func NewDeployStatusHandler(svc DeployService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.DeployStatus(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]string{"status": status})
	}
}

// NewScaleEndpointHandler returns the handler for
// POST /api/v1/jobs/{jobID}/deploy/scale.
func NewScaleEndpointHandler(svc DeployService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			InstanceCount int `json:"deploy_instance_count"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := svc.ScaleEndpoint(r.Context(), chi.URLParam(r, "jobID"), req.InstanceCount); err != nil {
			serviceError(w, err)
			return
		}
		response.Accepted(w, map[string]int{"deploy_instance_count": req.InstanceCount})
	}
}

// NewTeardownHandler returns the handler for
// DELETE /api/v1/jobs/{jobID}/deploy.
func NewTeardownHandler(svc DeployService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Teardown(r.Context(), chi.URLParam(r, "jobID")); err != nil {
			serviceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
