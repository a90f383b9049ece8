package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/acousticlabs/trainyard/internal/api/middleware"
	"github.com/acousticlabs/trainyard/internal/api/response"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	Health http.HandlerFunc

	NextJobID  http.HandlerFunc
	CreateJob  http.HandlerFunc
	GetJob     http.HandlerFunc
	UpdateJob  http.HandlerFunc
	ListJobs   http.HandlerFunc
	DeleteJobs http.HandlerFunc

	AddClasses     http.HandlerFunc
	AutoAddClasses http.HandlerFunc
	RemoveClasses  http.HandlerFunc

	LaunchPreprocess    http.HandlerFunc
	PreprocessStatus    http.HandlerFunc
	PreprocessedDataset http.HandlerFunc

	SetTrainConfig   http.HandlerFunc
	ClearTrainConfig http.HandlerFunc
	LaunchTraining   http.HandlerFunc
	TrainingStatus   http.HandlerFunc
	PurgeTraining    http.HandlerFunc
	TrainingPlots    http.HandlerFunc

	SetDeployConfig   http.HandlerFunc
	ClearDeployConfig http.HandlerFunc
	Deploy            http.HandlerFunc
	DeployStatus      http.HandlerFunc
	ScaleEndpoint     http.HandlerFunc
	Teardown          http.HandlerFunc

	SetThreshold   http.HandlerFunc
	ClearThreshold http.HandlerFunc
	Predict        http.HandlerFunc
	PredictDisplay http.HandlerFunc
	Approve        http.HandlerFunc
	Reject         http.HandlerFunc
	ApprovedJobs   http.HandlerFunc

	ListClasses  http.HandlerFunc
	ClassCount   http.HandlerFunc
	ClassSamples http.HandlerFunc

	CreateKey http.HandlerFunc
	ListKeys  http.HandlerFunc
	RevokeKey http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.Health))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/jobs/next-id", orNotImplemented(deps.NextJobID))
		r.Post("/api/v1/jobs", orNotImplemented(deps.CreateJob))
		r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobs))
		r.Delete("/api/v1/jobs", orNotImplemented(deps.DeleteJobs))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJob))
		r.Patch("/api/v1/jobs/{jobID}", orNotImplemented(deps.UpdateJob))

		r.Post("/api/v1/jobs/{jobID}/classes", orNotImplemented(deps.AddClasses))
		r.Post("/api/v1/jobs/{jobID}/classes/auto", orNotImplemented(deps.AutoAddClasses))
		r.Delete("/api/v1/jobs/{jobID}/classes", orNotImplemented(deps.RemoveClasses))

		r.Post("/api/v1/jobs/{jobID}/preprocess", orNotImplemented(deps.LaunchPreprocess))
		r.Get("/api/v1/jobs/{jobID}/preprocess/status", orNotImplemented(deps.PreprocessStatus))
		r.Get("/api/v1/jobs/{jobID}/preprocess/dataset", orNotImplemented(deps.PreprocessedDataset))

		r.Post("/api/v1/jobs/{jobID}/train/config", orNotImplemented(deps.SetTrainConfig))
		r.Delete("/api/v1/jobs/{jobID}/train/config", orNotImplemented(deps.ClearTrainConfig))
		r.Post("/api/v1/jobs/{jobID}/train", orNotImplemented(deps.LaunchTraining))
		r.Get("/api/v1/jobs/{jobID}/train/status", orNotImplemented(deps.TrainingStatus))
		r.Delete("/api/v1/jobs/{jobID}/train/data", orNotImplemented(deps.PurgeTraining))
		r.Get("/api/v1/jobs/{jobID}/train/plots", orNotImplemented(deps.TrainingPlots))

		r.Post("/api/v1/jobs/{jobID}/deploy/config", orNotImplemented(deps.SetDeployConfig))
		r.Delete("/api/v1/jobs/{jobID}/deploy/config", orNotImplemented(deps.ClearDeployConfig))
		r.Post("/api/v1/jobs/{jobID}/deploy", orNotImplemented(deps.Deploy))
		r.Get("/api/v1/jobs/{jobID}/deploy/status", orNotImplemented(deps.DeployStatus))
		r.Post("/api/v1/jobs/{jobID}/deploy/scale", orNotImplemented(deps.ScaleEndpoint))
		r.Delete("/api/v1/jobs/{jobID}/deploy", orNotImplemented(deps.Teardown))

		r.Post("/api/v1/jobs/{jobID}/threshold", orNotImplemented(deps.SetThreshold))
		r.Delete("/api/v1/jobs/{jobID}/threshold", orNotImplemented(deps.ClearThreshold))
		r.Post("/api/v1/jobs/{jobID}/predict", orNotImplemented(deps.Predict))
		r.Post("/api/v1/jobs/{jobID}/predict/display", orNotImplemented(deps.PredictDisplay))
		r.Get("/api/v1/approved-jobs", orNotImplemented(deps.ApprovedJobs))

		r.Get("/api/v1/datasets/classes", orNotImplemented(deps.ListClasses))
		r.Get("/api/v1/datasets/classes/{class}/count", orNotImplemented(deps.ClassCount))
		r.Get("/api/v1/datasets/classes/{class}/samples", orNotImplemented(deps.ClassSamples))

		// Approver routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeApprover))

			r.Post("/api/v1/jobs/{jobID}/approve", orNotImplemented(deps.Approve))
			r.Post("/api/v1/jobs/{jobID}/reject", orNotImplemented(deps.Reject))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAdmin))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKey))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeys))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKey))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
