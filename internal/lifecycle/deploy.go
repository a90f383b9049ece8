package lifecycle

import (
	"context"
	"log/slog"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// DeployConfigParams sets a job's deployment configuration.
type DeployConfigParams struct {
	InstanceType  string `json:"deploy_instance_type"`
	InstanceCount int    `json:"deploy_instance_count"`
	Date          string `json:"deploy_date"`
}

// SetDeployConfig validates and stores the deployment configuration.
func (s *Service) SetDeployConfig(ctx context.Context, jobID string, params DeployConfigParams) (*models.Job, error) {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return nil, err
	}
	if err := validateInstance(params.InstanceType, params.InstanceCount); err != nil {
		return nil, err
	}
	if params.Date == "" {
		return nil, validationf("deploy_date is required")
	}

	err := s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldDeployInstanceType:  params.InstanceType,
		store.FieldDeployInstanceCount: params.InstanceCount,
		store.FieldDeployDate:          params.Date,
	}})
	if err != nil {
		return nil, err
	}
	return s.getJob(ctx, jobID)
}

// ClearDeployConfig erases the deployment configuration fields. The
// endpoint handle is untouched; use Teardown for a live endpoint.
func (s *Service) ClearDeployConfig(ctx context.Context, jobID string) error {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return err
	}
	return s.update(ctx, jobID, store.JobUpdate{Remove: []string{
		store.FieldDeployInstanceType,
		store.FieldDeployInstanceCount,
		store.FieldDeployDate,
	}})
}

// Deploy stands up a real-time endpoint for the trained model. Refused
// while training is still running.
func (s *Service) Deploy(ctx context.Context, jobID string) (string, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.DeployInstanceType == nil || job.DeployInstanceCount == nil {
		return "", validationf("job has no deployment configuration; set it first")
	}
	if job.TrainJobName == nil {
		return "", validationf("job has no trained model")
	}

	details, err := s.compute.TrainingJobStatus(ctx, *job.TrainJobName)
	if err != nil {
		return "", providerErr("training status lookup", err)
	}
	if details.Status == compute.StatusInProgress {
		return "", conflictf("training is in progress; wait for it to finish before deploying")
	}

	err = s.compute.DeployModel(ctx, compute.DeploySpec{
		EndpointName:  job.JobName,
		ModelDataURL:  s3URI(s.cfg.Bucket, modelArtifactKey(job.JobName)),
		InstanceType:  *job.DeployInstanceType,
		InstanceCount: *job.DeployInstanceCount,
	})
	if err != nil {
		return "", providerErr("deploy model", err)
	}

	if err := s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldEndpointName: job.JobName,
	}}); err != nil {
		return "", err
	}
	return job.JobName, nil
}

// DeployStatus returns the endpoint's vendor status string.
func (s *Service) DeployStatus(ctx context.Context, jobID string) (string, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.EndpointName == nil {
		return "", validationf("job has no endpoint")
	}

	status, err := s.compute.EndpointStatus(ctx, *job.EndpointName)
	if err != nil {
		return "", providerErr("endpoint status lookup", err)
	}
	return status, nil
}

// ScaleEndpoint changes the endpoint's instance count. The stored count is
// only updated after the backend accepts the change.
func (s *Service) ScaleEndpoint(ctx context.Context, jobID string, instanceCount int) error {
	if !compute.ValidInstanceCount(instanceCount) {
		return validationf("instance count must be between 1 and 5, got %d", instanceCount)
	}

	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EndpointName == nil {
		return validationf("job has no endpoint")
	}

	status, err := s.compute.EndpointStatus(ctx, *job.EndpointName)
	if err != nil {
		return providerErr("endpoint status lookup", err)
	}
	if status != compute.EndpointInService {
		return conflictf("endpoint is %s; scaling requires %s", status, compute.EndpointInService)
	}

	if err := s.compute.ScaleEndpoint(ctx, *job.EndpointName, instanceCount); err != nil {
		return providerErr("scale endpoint", err)
	}

	return s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldDeployInstanceCount: instanceCount,
	}})
}

// Teardown deletes the endpoint and erases the deployment fields. Endpoint
// deletion is best effort: a backend failure is logged and the record is
// cleaned up regardless.
func (s *Service) Teardown(ctx context.Context, jobID string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EndpointName == nil {
		return validationf("job has no endpoint")
	}

	if err := s.compute.DeleteEndpoint(ctx, *job.EndpointName); err != nil {
		slog.Warn("endpoint deletion failed", "job_id", jobID, "endpoint", *job.EndpointName, "error", err)
	}

	return s.update(ctx, jobID, store.JobUpdate{Remove: []string{
		store.FieldEndpointName,
		store.FieldDeployInstanceType,
		store.FieldDeployInstanceCount,
		store.FieldDeployDate,
	}})
}
