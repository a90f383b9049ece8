package lifecycle

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/acousticlabs/trainyard/internal/cache"
)

// ClassInfo is one dataset catalog entry.
type ClassInfo struct {
	ClassName string `json:"class_name"`
	Count     int    `json:"count"`
}

// ListClasses returns every class in the dataset catalog with its object
// count. Results are cached briefly; this listing backs browsing UIs, not
// validation, which always counts live.
func (s *Service) ListClasses(ctx context.Context) ([]ClassInfo, error) {
	if raw, found, err := s.cache.Get(ctx, cache.DatasetClassesKey()); err == nil && found {
		var cached []ClassInfo
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	names, err := s.objects.ListPrefixes(ctx, inputDataPrefix)
	if err != nil {
		return nil, providerErr("list dataset classes", err)
	}

	classes := make([]ClassInfo, 0, len(names))
	for _, name := range names {
		count, err := s.objects.Count(ctx, classPrefix(name))
		if err != nil {
			return nil, providerErr("count dataset objects", err)
		}
		classes = append(classes, ClassInfo{ClassName: name, Count: count})
	}

	if raw, err := json.Marshal(classes); err == nil {
		if err := s.cache.Set(ctx, cache.DatasetClassesKey(), raw, s.cfg.ClassListTTL); err != nil {
			slog.Warn("dataset class list cache write failed", "error", err)
		}
	}
	return classes, nil
}

// ClassCount returns the live object count for one class.
func (s *Service) ClassCount(ctx context.Context, class string) (int, error) {
	if class == "" {
		return 0, validationf("class is required")
	}
	count, err := s.objects.Count(ctx, classPrefix(class))
	if err != nil {
		return 0, providerErr("count dataset objects", err)
	}
	return count, nil
}

// ClassSamples returns presigned links to up to limit objects of a class.
func (s *Service) ClassSamples(ctx context.Context, class string, limit int) ([]string, error) {
	if class == "" {
		return nil, validationf("class is required")
	}
	if limit <= 0 {
		limit = 10
	}

	objects, err := s.objects.List(ctx, classPrefix(class))
	if err != nil {
		return nil, providerErr("list dataset objects", err)
	}
	if len(objects) == 0 {
		return nil, notFoundf("class %q has no objects", class)
	}
	if len(objects) > limit {
		objects = objects[:limit]
	}

	urls := make([]string, 0, len(objects))
	for _, obj := range objects {
		url, err := s.objects.PresignedURL(ctx, obj.Key, s.cfg.PresignTTL)
		if err != nil {
			return nil, providerErr("presign sample", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}
