package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/store"
)

// LaunchPreprocess starts the dataset preprocessing job for a configured
// job and stores the returned handle. The class configuration travels to
// the container as a delimited environment variable.
func (s *Service) LaunchPreprocess(ctx context.Context, jobID string) (string, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if len(job.ClassConfigs) == 0 {
		return "", validationf("job has no class configuration; add classes first")
	}
	if job.PreprocessInstanceType == nil || job.PreprocessInstanceCount == nil {
		return "", validationf("job has no preprocessing instance settings")
	}

	entries := make([]string, 0, len(job.ClassConfigs))
	for _, cc := range job.ClassConfigs {
		entries = append(entries, fmt.Sprintf("%s:%d:%s", cc.ClassName, cc.ClassCount, cc.Type))
	}

	name := fmt.Sprintf("preprocess-data-job-%d", time.Now().Unix())
	handle, err := s.compute.StartProcessingJob(ctx, compute.ProcessingSpec{
		Name:          name,
		InstanceType:  *job.PreprocessInstanceType,
		InstanceCount: *job.PreprocessInstanceCount,
		Environment: map[string]string{
			"CLASS_CONFIGS": strings.Join(entries, ","),
			"S3_BUCKET":     s.cfg.Bucket,
			"JOB_NAME":      job.JobName,
		},
		OutputS3URI: s3URI(s.cfg.Bucket, preprocessedDataPrefix(job.JobName)),
	})
	if err != nil {
		return "", providerErr("start preprocessing job", err)
	}

	if err := s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldPreprocJobName: handle,
	}}); err != nil {
		return "", err
	}
	return handle, nil
}

// PreprocessStatus polls the preprocessing job. It performs no writes.
func (s *Service) PreprocessStatus(ctx context.Context, jobID string) (compute.JobDetails, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return compute.JobDetails{}, err
	}
	if job.PreprocessJobName == nil {
		return compute.JobDetails{}, validationf("preprocessing has not been launched for this job")
	}

	details, err := s.compute.ProcessingJobStatus(ctx, *job.PreprocessJobName)
	if err != nil {
		return compute.JobDetails{}, providerErr("processing status lookup", err)
	}
	return details, nil
}

// PreprocessedDatasetURL returns a presigned link to the augmented CSV,
// available only once preprocessing has completed.
func (s *Service) PreprocessedDatasetURL(ctx context.Context, jobID string) (string, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.PreprocessJobName == nil {
		return "", validationf("preprocessing has not been launched for this job")
	}

	details, err := s.compute.ProcessingJobStatus(ctx, *job.PreprocessJobName)
	if err != nil {
		return "", providerErr("processing status lookup", err)
	}
	if details.Status != compute.StatusCompleted {
		return "", conflictf("preprocessing is %s; dataset is available once it completes", details.Status)
	}

	url, err := s.objects.PresignedURL(ctx, preprocessedCSVKey(job.JobName), s.cfg.PresignTTL)
	if err != nil {
		return "", providerErr("presign dataset", err)
	}
	return url, nil
}
