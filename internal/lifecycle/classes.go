package lifecycle

import (
	"context"

	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// AddClassesParams configures a job's dataset classes and the preprocessing
// instance settings in one step.
type AddClassesParams struct {
	Classes       []models.ClassConfig `json:"class_configs"`
	InstanceType  string               `json:"preprocess_instance_type"`
	InstanceCount int                  `json:"preprocess_instance_count"`
	Date          string               `json:"preprocess_date"`
}

// AutoAddClassesParams discovers classes from the dataset catalog instead of
// taking an explicit list. Every discovered class is used at its full
// object count with the given sample type.
type AutoAddClassesParams struct {
	SampleType    string `json:"type"`
	InstanceType  string `json:"preprocess_instance_type"`
	InstanceCount int    `json:"preprocess_instance_count"`
	Date          string `json:"preprocess_date"`
}

// AddClasses validates and stores a job's class configuration.
func (s *Service) AddClasses(ctx context.Context, jobID string, params AddClassesParams) (*models.Job, error) {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return nil, err
	}
	if err := s.validateClassConfigs(ctx, params.Classes); err != nil {
		return nil, err
	}
	if err := validateInstance(params.InstanceType, params.InstanceCount); err != nil {
		return nil, err
	}
	if params.Date == "" {
		return nil, validationf("preprocess_date is required")
	}

	err := s.update(ctx, jobID, store.JobUpdate{Set: map[string]any{
		store.FieldClassConfigs:         params.Classes,
		store.FieldPreprocInstanceType:  params.InstanceType,
		store.FieldPreprocInstanceCount: params.InstanceCount,
		store.FieldPreprocDate:          params.Date,
	}})
	if err != nil {
		return nil, err
	}
	return s.getJob(ctx, jobID)
}

// AutoAddClasses discovers every class in the dataset catalog and hands the
// resulting configs to the same validation and storage path as AddClasses.
func (s *Service) AutoAddClasses(ctx context.Context, jobID string, params AutoAddClassesParams) (*models.Job, error) {
	if params.SampleType == "" {
		return nil, validationf("type is required")
	}

	classes, err := s.objects.ListPrefixes(ctx, inputDataPrefix)
	if err != nil {
		return nil, providerErr("list dataset classes", err)
	}
	if len(classes) == 0 {
		return nil, validationf("no classes found in the dataset catalog")
	}

	configs := make([]models.ClassConfig, 0, len(classes))
	for _, class := range classes {
		count, err := s.objects.Count(ctx, classPrefix(class))
		if err != nil {
			return nil, providerErr("count dataset objects", err)
		}
		configs = append(configs, models.ClassConfig{
			ClassName:  class,
			ClassCount: count,
			Type:       params.SampleType,
		})
	}

	return s.AddClasses(ctx, jobID, AddClassesParams{
		Classes:       configs,
		InstanceType:  params.InstanceType,
		InstanceCount: params.InstanceCount,
		Date:          params.Date,
	})
}

// RemoveClasses deletes the preprocessed dataset and erases the class and
// preprocessing fields, including the preprocessing job handle.
func (s *Service) RemoveClasses(ctx context.Context, jobID string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	if err := s.objects.Delete(ctx, preprocessedCSVKey(job.JobName)); err != nil {
		return providerErr("delete preprocessed dataset", err)
	}

	return s.update(ctx, jobID, store.JobUpdate{Remove: []string{
		store.FieldClassConfigs,
		store.FieldPreprocInstanceType,
		store.FieldPreprocInstanceCount,
		store.FieldPreprocDate,
		store.FieldPreprocJobName,
	}})
}
