package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// ApprovalService is the slice of the lifecycle service the threshold and
// approval handlers use.
type ApprovalService interface {
	SetThreshold(ctx context.Context, jobID string, value float64) error
	ClearThreshold(ctx context.Context, jobID string) error
	Approve(ctx context.Context, jobID string, params lifecycle.ApproveParams) error
	Reject(ctx context.Context, jobID string) error
	ApprovedJobs(ctx context.Context) ([]*models.ApprovedJob, error)
}

// NewSetThresholdHandler returns the handler for
// POST /api/v1/jobs/{jobID}/threshold.
func NewSetThresholdHandler(svc ApprovalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Threshold *float64 `json:"threshold"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Threshold == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "threshold is required", nil)
			return
		}
		if err := svc.SetThreshold(r.Context(), chi.URLParam(r, "jobID"), *req.Threshold); err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]float64{"threshold": *req.Threshold})
	}
}

// NewClearThresholdHandler returns the handler for
// DELETE /api/v1/jobs/{jobID}/threshold.
func NewClearThresholdHandler(svc ApprovalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearThreshold(r.Context(), chi.URLParam(r, "jobID")); err != nil {
			serviceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewApproveHandler returns the handler for POST /api/v1/jobs/{jobID}/approve.
func NewApproveHandler(svc ApprovalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params lifecycle.ApproveParams
		if !decodeBody(w, r, &params) {
			return
		}
		jobID := chi.URLParam(r, "jobID")
		if err := svc.Approve(r.Context(), jobID, params); err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]any{"job_id": jobID, "approved": true})
	}
}

// NewRejectHandler returns the handler for POST /api/v1/jobs/{jobID}/reject.
func NewRejectHandler(svc ApprovalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if err := svc.Reject(r.Context(), jobID); err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]any{"job_id": jobID, "approved": false})
	}
}

// NewApprovedJobsHandler returns the handler for GET /api/v1/approved-jobs.
func NewApprovedJobsHandler(svc ApprovalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		approved, err := svc.ApprovedJobs(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}
		if approved == nil {
			approved = []*models.ApprovedJob{}
		}
		response.JSON(w, approved)
	}
}
