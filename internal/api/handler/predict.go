package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/internal/predict"
)

// PredictService is the slice of the lifecycle service the inference
// handlers use.
type PredictService interface {
	Predict(ctx context.Context, jobID string, payload json.RawMessage) (predict.Outcome, error)
	PredictDisplay(ctx context.Context, jobID string, payload json.RawMessage) (predict.DisplayOutcome, error)
}

// readPayload reads the raw request body; the payload is forwarded to the
// endpoint verbatim, so the handler only checks it is valid JSON.
func readPayload(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body", nil)
		return nil, false
	}
	if len(body) > 0 && !json.Valid(body) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return nil, false
	}
	return body, true
}

// NewPredictHandler returns the handler for POST /api/v1/jobs/{jobID}/predict.
func NewPredictHandler(svc PredictService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := readPayload(w, r)
		if !ok {
			return
		}
		out, err := svc.Predict(r.Context(), chi.URLParam(r, "jobID"), payload)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, out)
	}
}

// NewPredictDisplayHandler returns the handler for
// POST /api/v1/jobs/{jobID}/predict/display.
func NewPredictDisplayHandler(svc PredictService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := readPayload(w, r)
		if !ok {
			return
		}
		out, err := svc.PredictDisplay(r.Context(), chi.URLParam(r, "jobID"), payload)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, out)
	}
}
