// Package compute defines the gateway to the managed ML backend. Lifecycle
// code never talks to a vendor SDK directly; it goes through the Provider
// interface so the backend can be swapped or mocked.
package compute

import "context"

// Status is a normalized asynchronous job status. Vendor status strings are
// folded into this small set; anything unrecognized maps to StatusUnknown.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
	StatusUnknown    Status = "Unknown"
)

// EndpointInService is the endpoint status required before inference,
// threshold changes, scaling and approval. Endpoint statuses are passed
// through as vendor strings; only this one carries meaning here.
const EndpointInService = "InService"

// JobDetails describes one asynchronous backend job.
// ElapsedSeconds is -1 until the job has completed.
type JobDetails struct {
	Status         Status
	ElapsedSeconds int64
	FailureReason  string
}

// ProcessingSpec launches a dataset preprocessing job.
type ProcessingSpec struct {
	Name          string
	InstanceType  string
	InstanceCount int
	Environment   map[string]string
	OutputS3URI   string
}

// TrainingSpec launches a model training job.
type TrainingSpec struct {
	Name            string
	InstanceType    string
	InstanceCount   int
	InputS3URI      string
	OutputS3URI     string
	Hyperparameters map[string]string
}

// DeploySpec stands up a real-time inference endpoint for a trained model.
type DeploySpec struct {
	EndpointName  string
	ModelDataURL  string
	InstanceType  string
	InstanceCount int
}

// Provider is the managed ML backend interface. All blocking calls take a
// context and return explicit errors.
type Provider interface {
	Name() string
	Ping(ctx context.Context) error

	StartProcessingJob(ctx context.Context, spec ProcessingSpec) (string, error)
	ProcessingJobStatus(ctx context.Context, name string) (JobDetails, error)

	StartTrainingJob(ctx context.Context, spec TrainingSpec) (string, error)
	TrainingJobStatus(ctx context.Context, name string) (JobDetails, error)

	DeployModel(ctx context.Context, spec DeploySpec) error
	EndpointStatus(ctx context.Context, name string) (string, error)
	ScaleEndpoint(ctx context.Context, name string, instanceCount int) error
	DeleteEndpoint(ctx context.Context, name string) error

	// Invoke sends a payload to a live endpoint and returns the decoded
	// probability vector.
	Invoke(ctx context.Context, endpointName string, payload []byte) ([]float64, error)
}

// NormalizeStatus folds a vendor job status string into the Status set.
func NormalizeStatus(vendor string) Status {
	switch vendor {
	case "Pending":
		return StatusPending
	case "InProgress":
		return StatusInProgress
	case "Completed":
		return StatusCompleted
	case "Failed", "Stopping", "Stopped":
		return StatusFailed
	default:
		return StatusUnknown
	}
}
