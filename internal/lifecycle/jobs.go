package lifecycle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/jobid"
	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// CreateJobParams are the fields required to create a job record.
type CreateJobParams struct {
	JobID          string `json:"job_id"`
	JobName        string `json:"job_name"`
	JobDescription string `json:"job_description"`
	JobDate        string `json:"job_date"`
	JobType        string `json:"job_type"`
}

// UpdateJobParams are the mutable basic-info fields. Nil means unchanged.
type UpdateJobParams struct {
	JobName        *string `json:"job_name"`
	JobDescription *string `json:"job_description"`
	JobType        *string `json:"job_type"`
	ModifiedDate   string  `json:"modified_date"`
}

// JobWithStatus is a job joined with the live statuses of its backend
// resources.
type JobWithStatus struct {
	*models.Job
	Stage            string `json:"stage"`
	PreprocessStatus string `json:"preprocess_status,omitempty"`
	TrainStatus      string `json:"train_status,omitempty"`
	EndpointStatus   string `json:"endpoint_status,omitempty"`
}

// NextJobID issues a fresh job id that does not collide with any stored
// job. The store's unique constraint remains the authority; this is a
// courtesy check for the common case.
func (s *Service) NextJobID(ctx context.Context) (string, error) {
	ids, err := s.store.ListJobIDs(ctx)
	if err != nil {
		return "", internalErr("list job ids", err)
	}
	taken := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		taken[id] = struct{}{}
	}
	return jobid.Generate(taken), nil
}

// CreateJob validates and persists a new job record.
func (s *Service) CreateJob(ctx context.Context, params CreateJobParams) (*models.Job, error) {
	if !jobid.Valid(params.JobID) {
		return nil, validationf("job_id must be %d lowercase alphanumeric characters", jobid.Length)
	}
	if params.JobName == "" {
		return nil, validationf("job_name is required")
	}
	if params.JobDate == "" {
		return nil, validationf("job_date is required")
	}
	if err := validateJobType(params.JobType); err != nil {
		return nil, err
	}

	job := &models.Job{
		JobID:          params.JobID,
		JobName:        params.JobName,
		JobDescription: params.JobDescription,
		JobDate:        params.JobDate,
		JobType:        params.JobType,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, conflictf("a job with this id or name already exists")
		}
		return nil, internalErr("create job", err)
	}
	return s.getJob(ctx, params.JobID)
}

// GetJob returns a single job record.
func (s *Service) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	return s.getJob(ctx, jobID)
}

func (s *Service) getJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("job %s not found", jobID)
	}
	if err != nil {
		return nil, internalErr("get job", err)
	}
	return job, nil
}

// UpdateJobInfo updates basic job info. At least one field must change, and
// a renamed job must keep a unique name.
func (s *Service) UpdateJobInfo(ctx context.Context, jobID string, params UpdateJobParams) (*models.Job, error) {
	if params.JobName == nil && params.JobDescription == nil && params.JobType == nil {
		return nil, validationf("at least one of job_name, job_description, job_type is required")
	}
	if params.ModifiedDate == "" {
		return nil, validationf("modified_date is required")
	}

	if _, err := s.getJob(ctx, jobID); err != nil {
		return nil, err
	}

	upd := store.JobUpdate{Set: map[string]any{store.FieldJobDate: params.ModifiedDate}}
	if params.JobName != nil {
		if *params.JobName == "" {
			return nil, validationf("job_name cannot be empty")
		}
		taken, err := s.store.JobNameExists(ctx, *params.JobName, jobID)
		if err != nil {
			return nil, internalErr("check job name", err)
		}
		if taken {
			return nil, conflictf("job name %q is already in use", *params.JobName)
		}
		upd.Set[store.FieldJobName] = *params.JobName
	}
	if params.JobDescription != nil {
		upd.Set[store.FieldJobDescription] = *params.JobDescription
	}
	if params.JobType != nil {
		if err := validateJobType(*params.JobType); err != nil {
			return nil, err
		}
		upd.Set[store.FieldJobType] = *params.JobType
	}

	if err := s.update(ctx, jobID, upd); err != nil {
		return nil, err
	}
	return s.getJob(ctx, jobID)
}

// ListJobs returns all jobs, each enriched with the live status of any
// backend resource it holds a handle to. A failed status lookup degrades to
// StatusUnknown and never fails the listing.
func (s *Service) ListJobs(ctx context.Context) ([]JobWithStatus, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, internalErr("list jobs", err)
	}

	out := make([]JobWithStatus, 0, len(jobs))
	for _, job := range jobs {
		entry := JobWithStatus{Job: job, Stage: job.Stage()}

		if job.PreprocessJobName != nil {
			details, err := s.compute.ProcessingJobStatus(ctx, *job.PreprocessJobName)
			if err != nil {
				slog.Warn("processing status lookup failed", "job_id", job.JobID, "error", err)
				details.Status = compute.StatusUnknown
			}
			entry.PreprocessStatus = string(details.Status)
		}
		if job.TrainJobName != nil {
			details, err := s.compute.TrainingJobStatus(ctx, *job.TrainJobName)
			if err != nil {
				slog.Warn("training status lookup failed", "job_id", job.JobID, "error", err)
				details.Status = compute.StatusUnknown
			}
			entry.TrainStatus = string(details.Status)
		}
		if job.EndpointName != nil {
			status, err := s.compute.EndpointStatus(ctx, *job.EndpointName)
			if err != nil {
				slog.Warn("endpoint status lookup failed", "job_id", job.JobID, "error", err)
				status = string(compute.StatusUnknown)
			}
			entry.EndpointStatus = status
		}

		out = append(out, entry)
	}
	return out, nil
}

// DeleteJobs removes jobs in bulk. Every job is checked before anything is
// deleted: a job whose preprocessing is still running blocks the whole
// request. Each job's preprocessed dataset is removed before its record.
func (s *Service) DeleteJobs(ctx context.Context, jobIDs []string) error {
	if len(jobIDs) == 0 {
		return validationf("job_ids is required")
	}

	jobs := make([]*models.Job, 0, len(jobIDs))
	for _, id := range jobIDs {
		job, err := s.getJob(ctx, id)
		if err != nil {
			return err
		}
		if job.PreprocessJobName != nil {
			details, err := s.compute.ProcessingJobStatus(ctx, *job.PreprocessJobName)
			if err != nil {
				return providerErr("processing status lookup", err)
			}
			if details.Status == compute.StatusInProgress {
				return conflictf("job %s has preprocessing in progress", id)
			}
		}
		jobs = append(jobs, job)
	}

	for _, job := range jobs {
		if err := s.objects.Delete(ctx, preprocessedCSVKey(job.JobName)); err != nil {
			return providerErr("delete preprocessed dataset", err)
		}
		if err := s.store.DeleteJob(ctx, job.JobID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return internalErr("delete job", err)
		}
	}
	return nil
}

// update applies a JobUpdate, mapping store errors to lifecycle errors.
func (s *Service) update(ctx context.Context, jobID string, upd store.JobUpdate) error {
	err := s.store.UpdateJob(ctx, jobID, upd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFoundf("job %s not found", jobID)
	case errors.Is(err, store.ErrDuplicateKey):
		return conflictf("a job with this name already exists")
	default:
		return internalErr("update job", err)
	}
}
