package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// TrainConfigParams sets a job's training configuration.
type TrainConfigParams struct {
	ArchitectureType int               `json:"train_architecture_type"`
	InstanceType     string            `json:"train_instance_type"`
	InstanceCount    int               `json:"train_instance_count"`
	Date             string            `json:"train_date"`
	Hyperparameters  map[string]string `json:"hyperparameters"`
}

// SetTrainConfig validates and stores the training configuration.
func (s *Service) SetTrainConfig(ctx context.Context, jobID string, params TrainConfigParams) (*models.Job, error) {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return nil, err
	}
	if params.ArchitectureType <= 0 {
		return nil, validationf("train_architecture_type must be positive")
	}
	if err := validateInstance(params.InstanceType, params.InstanceCount); err != nil {
		return nil, err
	}
	if params.Date == "" {
		return nil, validationf("train_date is required")
	}

	set := map[string]any{
		store.FieldTrainArchType:      params.ArchitectureType,
		store.FieldTrainInstanceType:  params.InstanceType,
		store.FieldTrainInstanceCount: params.InstanceCount,
		store.FieldTrainDate:          params.Date,
	}
	if len(params.Hyperparameters) > 0 {
		set[store.FieldHyperparameters] = params.Hyperparameters
	}

	if err := s.update(ctx, jobID, store.JobUpdate{Set: set}); err != nil {
		return nil, err
	}
	return s.getJob(ctx, jobID)
}

// ClearTrainConfig erases the training configuration fields.
func (s *Service) ClearTrainConfig(ctx context.Context, jobID string) error {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return err
	}
	return s.update(ctx, jobID, store.JobUpdate{Remove: []string{
		store.FieldTrainArchType,
		store.FieldTrainInstanceType,
		store.FieldTrainInstanceCount,
		store.FieldTrainDate,
		store.FieldHyperparameters,
	}})
}

// LaunchTraining starts the training job. The class order captured in
// training_classes at this moment is the index contract every later
// prediction decodes against.
func (s *Service) LaunchTraining(ctx context.Context, jobID string) (string, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.TrainArchitectureType == nil {
		return "", validationf("job has no training configuration; set it first")
	}
	if job.TrainInstanceType == nil || job.TrainInstanceCount == nil {
		return "", validationf("job has no training instance settings")
	}
	if len(job.ClassConfigs) == 0 {
		return "", validationf("job has no class configuration")
	}

	classes := make([]string, 0, len(job.ClassConfigs))
	for _, cc := range job.ClassConfigs {
		classes = append(classes, cc.ClassName)
	}

	hyperparameters := map[string]string{
		"architecture_type": strconv.Itoa(*job.TrainArchitectureType),
		"job_name":          job.JobName,
		"job_type":          job.JobType,
	}
	for k, v := range job.Hyperparameters {
		hyperparameters[k] = v
	}

	name := fmt.Sprintf("training-job-%d", time.Now().Unix())
	handle, err := s.compute.StartTrainingJob(ctx, compute.TrainingSpec{
		Name:            name,
		InstanceType:    *job.TrainInstanceType,
		InstanceCount:   *job.TrainInstanceCount,
		InputS3URI:      s3URI(s.cfg.Bucket, preprocessedDataPrefix(job.JobName)),
		OutputS3URI:     s3URI(s.cfg.Bucket, trainArtifactsPrefix(job.JobName)),
		Hyperparameters: hyperparameters,
	})
	if err != nil {
		return "", providerErr("start training job", err)
	}

	if err := s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldTrainJobName:    handle,
		store.FieldTrainingClasses: classes,
	}}); err != nil {
		return "", err
	}
	return handle, nil
}

// TrainingStatus polls the training job. It performs no writes.
func (s *Service) TrainingStatus(ctx context.Context, jobID string) (compute.JobDetails, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return compute.JobDetails{}, err
	}
	if job.TrainJobName == nil {
		return compute.JobDetails{}, validationf("training has not been launched for this job")
	}

	details, err := s.compute.TrainingJobStatus(ctx, *job.TrainJobName)
	if err != nil {
		return compute.JobDetails{}, providerErr("training status lookup", err)
	}
	return details, nil
}

// PurgeTrainingData deletes the training artifacts and erases every
// training-related field. Refused while training is still running.
func (s *Service) PurgeTrainingData(ctx context.Context, jobID string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	if job.TrainJobName != nil {
		details, err := s.compute.TrainingJobStatus(ctx, *job.TrainJobName)
		if err != nil {
			return providerErr("training status lookup", err)
		}
		if details.Status == compute.StatusInProgress {
			return conflictf("training is in progress; wait for it to finish before purging")
		}
	}

	if _, err := s.objects.DeletePrefix(ctx, trainArtifactsPrefix(job.JobName)); err != nil {
		return providerErr("delete training artifacts", err)
	}

	return s.update(ctx, jobID, store.JobUpdate{Remove: []string{
		store.FieldTrainJobName,
		store.FieldTrainArchType,
		store.FieldTrainInstanceType,
		store.FieldTrainInstanceCount,
		store.FieldTrainDate,
		store.FieldTrainingClasses,
		store.FieldClassificationReport,
		store.FieldAccuracy,
		store.FieldHyperparameters,
	}})
}

// TrainingPlots returns presigned links to the six training plot images,
// available only once training has completed.
func (s *Service) TrainingPlots(ctx context.Context, jobID string) (map[string]string, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.TrainJobName == nil {
		return nil, validationf("training has not been launched for this job")
	}

	details, err := s.compute.TrainingJobStatus(ctx, *job.TrainJobName)
	if err != nil {
		return nil, providerErr("training status lookup", err)
	}
	if details.Status != compute.StatusCompleted {
		return nil, conflictf("training is %s; plots are available once it completes", details.Status)
	}

	urls := make(map[string]string)
	for name, key := range plotKeys(job.JobName) {
		url, err := s.objects.PresignedURL(ctx, key, s.cfg.PresignTTL)
		if err != nil {
			return nil, providerErr("presign plot", err)
		}
		urls[name] = url
	}
	return urls, nil
}
