package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acousticlabs/trainyard/internal/api/handler"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
	"github.com/acousticlabs/trainyard/internal/predict"
)

type mockPredictService struct {
	PredictFunc        func(ctx context.Context, jobID string, payload json.RawMessage) (predict.Outcome, error)
	PredictDisplayFunc func(ctx context.Context, jobID string, payload json.RawMessage) (predict.DisplayOutcome, error)
}

func (m *mockPredictService) Predict(ctx context.Context, jobID string, payload json.RawMessage) (predict.Outcome, error) {
	return m.PredictFunc(ctx, jobID, payload)
}
func (m *mockPredictService) PredictDisplay(ctx context.Context, jobID string, payload json.RawMessage) (predict.DisplayOutcome, error) {
	return m.PredictDisplayFunc(ctx, jobID, payload)
}

func TestPredictHandler(t *testing.T) {
	payload := `{"audio_url":"s3://bucket/clip.wav"}`
	svc := &mockPredictService{
		PredictFunc: func(_ context.Context, jobID string, body json.RawMessage) (predict.Outcome, error) {
			assert.Equal(t, testJobID, jobID)
			assert.JSONEq(t, payload, string(body))
			return predict.Outcome{Class: "gunshot", Confidence: 0.93}, nil
		},
	}

	req := withJobID(jsonRequest(t, "POST", "/api/v1/jobs/"+testJobID+"/predict", payload), testJobID)
	w := httptest.NewRecorder()
	handler.NewPredictHandler(svc)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var out predict.Outcome
	decodeData(t, w, &out)
	assert.Equal(t, "gunshot", out.Class)
	assert.Equal(t, 0.93, out.Confidence)
}

func TestPredictHandlerInvalidJSON(t *testing.T) {
	svc := &mockPredictService{
		PredictFunc: func(_ context.Context, _ string, _ json.RawMessage) (predict.Outcome, error) {
			t.Fatal("service should not be called")
			return predict.Outcome{}, nil
		},
	}

	req := withJobID(jsonRequest(t, "POST", "/api/v1/jobs/"+testJobID+"/predict", `{broken`), testJobID)
	w := httptest.NewRecorder()
	handler.NewPredictHandler(svc)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorCode(t, w))
}

func TestPredictHandlerProviderError(t *testing.T) {
	svc := &mockPredictService{
		PredictFunc: func(_ context.Context, _ string, _ json.RawMessage) (predict.Outcome, error) {
			return predict.Outcome{}, &lifecycle.Error{
				Kind:    lifecycle.KindProvider,
				Message: "invoke endpoint",
				Err:     errors.New("ModelError: received server error (500) from primary"),
			}
		},
	}

	req := withJobID(jsonRequest(t, "POST", "/api/v1/jobs/"+testJobID+"/predict", `{}`), testJobID)
	w := httptest.NewRecorder()
	handler.NewPredictHandler(svc)(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "PROVIDER_ERROR", decodeErrorCode(t, w))

	// The backend's own message reaches the operator untouched.
	assert.Contains(t, w.Body.String(), "ModelError: received server error (500) from primary")
}

func TestPredictDisplayHandler(t *testing.T) {
	svc := &mockPredictService{
		PredictDisplayFunc: func(_ context.Context, _ string, _ json.RawMessage) (predict.DisplayOutcome, error) {
			return predict.DisplayOutcome{
				DisplayName: "Gunshot",
				Icon:        "alert",
				Color:       "#d33",
				Confidence:  0.93,
			}, nil
		},
	}

	req := withJobID(jsonRequest(t, "POST", "/api/v1/jobs/"+testJobID+"/predict/display", `{}`), testJobID)
	w := httptest.NewRecorder()
	handler.NewPredictDisplayHandler(svc)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var out predict.DisplayOutcome
	decodeData(t, w, &out)
	assert.Equal(t, "Gunshot", out.DisplayName)
	assert.Equal(t, "alert", out.Icon)
	assert.Equal(t, "#d33", out.Color)
}
