// Package handler implements the HTTP handlers. Handlers decode and do
// shape-level checks only; all domain rules live in the lifecycle service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
)

type jobStatusResponse struct {
	Status         string `json:"status"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	FailureReason  string `json:"failure_reason,omitempty"`
}

func toJobStatus(d compute.JobDetails) jobStatusResponse {
	return jobStatusResponse{
		Status:         string(d.Status),
		ElapsedSeconds: d.ElapsedSeconds,
		FailureReason:  d.FailureReason,
	}
}

// serviceError translates a lifecycle error into the HTTP error envelope.
func serviceError(w http.ResponseWriter, err error) {
	var lerr *lifecycle.Error
	if !errors.As(err, &lerr) {
		response.Error(w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "An unexpected error occurred", nil)
		return
	}

	switch lerr.Kind {
	case lifecycle.KindValidation:
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", lerr.Message, nil)
	case lifecycle.KindNotFound:
		response.Error(w, http.StatusNotFound, "NOT_FOUND", lerr.Message, nil)
	case lifecycle.KindConflict:
		response.Error(w, http.StatusConflict, "CONFLICT", lerr.Message, nil)
	case lifecycle.KindProvider:
		// The backend's own message is kept verbatim for operator diagnosis.
		response.Error(w, http.StatusInternalServerError, "PROVIDER_ERROR", lerr.Error(), nil)
	default:
		response.Error(w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

// decodeBody decodes the JSON request body into v. On failure it writes the
// error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return false
	}
	return true
}
