package lifecycle

import (
	"context"
	"encoding/json"

	"github.com/acousticlabs/trainyard/internal/predict"
)

// Predict invokes the job's endpoint and applies the plain decision rule.
func (s *Service) Predict(ctx context.Context, jobID string, payload json.RawMessage) (predict.Outcome, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return predict.Outcome{}, err
	}
	if job.EndpointName == nil {
		return predict.Outcome{}, validationf("job has no endpoint")
	}
	if len(job.TrainingClasses) == 0 {
		return predict.Outcome{}, validationf("job has no training classes")
	}
	if len(payload) == 0 {
		return predict.Outcome{}, validationf("payload is required")
	}

	scores, err := s.compute.Invoke(ctx, *job.EndpointName, payload)
	if err != nil {
		return predict.Outcome{}, providerErr("invoke endpoint", err)
	}

	out, err := predict.Decide(job.JobType, scores, job.TrainingClasses,
		predict.EffectiveThreshold(job.Threshold))
	if err != nil {
		return predict.Outcome{}, validationf("%s", err.Error())
	}
	return out, nil
}

// PredictDisplay invokes the job's endpoint and applies the display
// decision rule, resolving the winner to its display metadata.
func (s *Service) PredictDisplay(ctx context.Context, jobID string, payload json.RawMessage) (predict.DisplayOutcome, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return predict.DisplayOutcome{}, err
	}
	if job.EndpointName == nil {
		return predict.DisplayOutcome{}, validationf("job has no endpoint")
	}
	if len(job.TrainingClasses) == 0 {
		return predict.DisplayOutcome{}, validationf("job has no training classes")
	}
	if len(payload) == 0 {
		return predict.DisplayOutcome{}, validationf("payload is required")
	}

	scores, err := s.compute.Invoke(ctx, *job.EndpointName, payload)
	if err != nil {
		return predict.DisplayOutcome{}, providerErr("invoke endpoint", err)
	}

	out, err := predict.DecideDisplay(job.JobType, scores, job.TrainingClasses,
		job.DisplayNames, predict.EffectiveThreshold(job.Threshold))
	if err != nil {
		return predict.DisplayOutcome{}, validationf("%s", err.Error())
	}
	return out, nil
}
