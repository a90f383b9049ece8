package lifecycle

import (
	"context"
	"errors"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// ApproveParams carries the reviewer's sign-off.
type ApproveParams struct {
	ApproveName  string               `json:"approve_name"`
	ApproveDate  string               `json:"approve_date"`
	DisplayNames []models.DisplayName `json:"display_names_for_training_classes"`
}

// requireInService loads the job and checks its endpoint is live. Every
// threshold and approval operation funnels through this gate.
func (s *Service) requireInService(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EndpointName == nil {
		return nil, validationf("job has no endpoint")
	}

	status, err := s.compute.EndpointStatus(ctx, *job.EndpointName)
	if err != nil {
		return nil, providerErr("endpoint status lookup", err)
	}
	if status != compute.EndpointInService {
		return nil, conflictf("endpoint is %s; operation requires %s", status, compute.EndpointInService)
	}
	return job, nil
}

// SetThreshold stores the decision threshold for a live endpoint.
func (s *Service) SetThreshold(ctx context.Context, jobID string, value float64) error {
	if err := validateThreshold(value); err != nil {
		return err
	}
	if _, err := s.requireInService(ctx, jobID); err != nil {
		return err
	}
	return s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldThreshold: value,
	}})
}

// ClearThreshold erases the stored threshold, reverting to the default.
func (s *Service) ClearThreshold(ctx context.Context, jobID string) error {
	if _, err := s.requireInService(ctx, jobID); err != nil {
		return err
	}
	return s.update(ctx, jobID, store.JobUpdate{Remove: []string{store.FieldThreshold}})
}

// Approve marks the job approved. The display list must mirror
// training_classes exactly, entry for entry and in order; the approval
// fields are committed in a single update so a crash cannot leave a
// half-approved record.
func (s *Service) Approve(ctx context.Context, jobID string, params ApproveParams) error {
	if params.ApproveName == "" {
		return validationf("approve_name is required")
	}
	if params.ApproveDate == "" {
		return validationf("approve_date is required")
	}

	job, err := s.requireInService(ctx, jobID)
	if err != nil {
		return err
	}
	if len(job.TrainingClasses) == 0 {
		return validationf("job has no training classes")
	}
	if len(params.DisplayNames) != len(job.TrainingClasses) {
		return validationf("display list has %d entries, training has %d classes",
			len(params.DisplayNames), len(job.TrainingClasses))
	}
	for i, d := range params.DisplayNames {
		if d.Class != job.TrainingClasses[i] {
			return validationf("display entry %d is for class %q, expected %q",
				i, d.Class, job.TrainingClasses[i])
		}
		if d.DisplayName == "" {
			return validationf("display_name is required for class %q", d.Class)
		}
	}

	return s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldApproved:     true,
		store.FieldApproveName:  params.ApproveName,
		store.FieldApproveDate:  params.ApproveDate,
		store.FieldDisplayNames: params.DisplayNames,
	}})
}

// Reject withdraws approval and erases the reviewer-facing fields,
// including the threshold.
func (s *Service) Reject(ctx context.Context, jobID string) error {
	if _, err := s.requireInService(ctx, jobID); err != nil {
		return err
	}
	return s.update(ctx, jobID, store.JobUpdate{
		Set: map[string]any{store.FieldApproved: false},
		Remove: []string{
			store.FieldThreshold,
			store.FieldApproveName,
			store.FieldApproveDate,
			store.FieldDisplayNames,
		},
	})
}

// ApprovedJobs lists the approved jobs as a minimal projection.
func (s *Service) ApprovedJobs(ctx context.Context) ([]*models.ApprovedJob, error) {
	approved, err := s.store.ListApprovedJobs(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, internalErr("list approved jobs", err)
	}
	return approved, nil
}
