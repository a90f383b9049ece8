package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
)

// DatasetService is the slice of the lifecycle service the dataset catalog
// handlers use.
type DatasetService interface {
	ListClasses(ctx context.Context) ([]lifecycle.ClassInfo, error)
	ClassCount(ctx context.Context, class string) (int, error)
	ClassSamples(ctx context.Context, class string, limit int) ([]string, error)
}

// NewListClassesHandler returns the handler for GET /api/v1/datasets/classes.
func NewListClassesHandler(svc DatasetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classes, err := svc.ListClasses(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, classes)
	}
}

// NewClassCountHandler returns the handler for
// GET /api/v1/datasets/classes/{class}/count.
func NewClassCountHandler(svc DatasetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		class := chi.URLParam(r, "class")
		count, err := svc.ClassCount(r.Context(), class)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]any{"class_name": class, "count": count})
	}
}

// NewClassSamplesHandler returns the handler for
// GET /api/v1/datasets/classes/{class}/samples.
func NewClassSamplesHandler(svc DatasetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer", nil)
				return
			}
			limit = n
		}

		urls, err := svc.ClassSamples(r.Context(), chi.URLParam(r, "class"), limit)
		if err != nil {
			serviceError(w, err)
			return
		}
		response.JSON(w, map[string]any{"urls": urls})
	}
}
