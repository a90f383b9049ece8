package lifecycle

import (
	"context"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/pkg/models"
)

func validateJobType(t string) error {
	if t != models.JobTypeBinary && t != models.JobTypeMulti {
		return validationf("job_type must be %q or %q", models.JobTypeBinary, models.JobTypeMulti)
	}
	return nil
}

func validateInstance(instanceType string, count int) error {
	if !compute.ValidInstanceType(instanceType) {
		return validationf("instance type %q is not supported", instanceType)
	}
	if !compute.ValidInstanceCount(count) {
		return validationf("instance count must be between 1 and 5, got %d", count)
	}
	return nil
}

// validateClassConfigs checks each entry's fields, rejects duplicate class
// names, and verifies every requested class_count against the live object
// count in the dataset catalog. Counts are always read live here, never
// from cache.
func (s *Service) validateClassConfigs(ctx context.Context, configs []models.ClassConfig) error {
	if len(configs) == 0 {
		return validationf("class_configs is required")
	}

	seen := make(map[string]bool, len(configs))
	for _, cc := range configs {
		if cc.ClassName == "" {
			return validationf("class_name is required for every class config")
		}
		if cc.ClassCount <= 0 {
			return validationf("class_count for %q must be positive", cc.ClassName)
		}
		if cc.Type == "" {
			return validationf("type is required for class %q", cc.ClassName)
		}
		if seen[cc.ClassName] {
			return validationf("duplicate class %q", cc.ClassName)
		}
		seen[cc.ClassName] = true

		available, err := s.objects.Count(ctx, classPrefix(cc.ClassName))
		if err != nil {
			return providerErr("count dataset objects", err)
		}
		if cc.ClassCount > available {
			return validationf("class %q has %d objects available, %d requested",
				cc.ClassName, available, cc.ClassCount)
		}
	}
	return nil
}

func validateThreshold(v float64) error {
	if v < 0 || v > 1 {
		return validationf("threshold must be between 0 and 1, got %g", v)
	}
	return nil
}
