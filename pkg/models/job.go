// Package models contains the shared data models used across trainyard.
package models

import "time"

// Job types. Fixed at creation; the decision engine branches on this.
const (
	JobTypeBinary = "binary"
	JobTypeMulti  = "multi"
)

// Job is the aggregate record tracking one end-to-end training effort, from
// dataset configuration through deployment and approval. Optional stage
// fields are pointers: nil means "not yet set", never "zero value".
type Job struct {
	JobID          string `db:"job_id"          json:"job_id"`
	JobName        string `db:"job_name"        json:"job_name"`
	JobDescription string `db:"job_description" json:"job_description"`
	JobDate        string `db:"job_date"        json:"job_date"`
	JobType        string `db:"job_type"        json:"job_type"`

	ClassConfigs []ClassConfig `db:"class_configs" json:"class_configs,omitempty"`

	PreprocessInstanceType  *string `db:"preprocess_instance_type"  json:"preprocess_instance_type,omitempty"`
	PreprocessInstanceCount *int    `db:"preprocess_instance_count" json:"preprocess_instance_count,omitempty"`
	PreprocessDate          *string `db:"preprocess_date"           json:"preprocess_date,omitempty"`
	PreprocessJobName       *string `db:"preprocess_job_name"       json:"sagemaker_preprocess_job_name,omitempty"`

	TrainArchitectureType *int    `db:"train_architecture_type" json:"train_architecture_type,omitempty"`
	TrainInstanceType     *string `db:"train_instance_type"     json:"train_instance_type,omitempty"`
	TrainInstanceCount    *int    `db:"train_instance_count"    json:"train_instance_count,omitempty"`
	TrainDate             *string `db:"train_date"              json:"train_date,omitempty"`
	TrainJobName          *string `db:"train_job_name"          json:"sagemaker_train_job_name,omitempty"`

	// TrainingClasses is fixed when training completes. Its order is the
	// index-to-label contract for decoding every later prediction and must
	// never be reordered.
	TrainingClasses      []string          `db:"training_classes"      json:"training_classes,omitempty"`
	Accuracy             *float64          `db:"accuracy"              json:"accuracy,omitempty"`
	ClassificationReport *string           `db:"classification_report" json:"classification_report,omitempty"`
	Hyperparameters      map[string]string `db:"hyperparameters"       json:"hyperparameters,omitempty"`

	DeployInstanceType  *string `db:"deploy_instance_type"  json:"deploy_instance_type,omitempty"`
	DeployInstanceCount *int    `db:"deploy_instance_count" json:"deploy_instance_count,omitempty"`
	DeployDate          *string `db:"deploy_date"           json:"deploy_date,omitempty"`
	EndpointName        *string `db:"endpoint_name"         json:"endpoint_name,omitempty"`

	Threshold   *float64 `db:"threshold"    json:"threshold,omitempty"`
	Approved    bool     `db:"approved"     json:"approved"`
	ApproveName *string  `db:"approve_name" json:"approve_name,omitempty"`
	ApproveDate *string  `db:"approve_date" json:"approve_date,omitempty"`

	// DisplayNames must match TrainingClasses in length and class order;
	// enforced at approval time.
	DisplayNames []DisplayName `db:"display_names" json:"display_names_for_training_classes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Job stages derived from which fields are present. Later stages imply all
// earlier ones.
const (
	StageCreated            = "created"
	StageClassesConfigured  = "classes_configured"
	StagePreprocessLaunched = "preprocess_launched"
	StageTrainConfigured    = "train_configured"
	StageTrainLaunched      = "train_launched"
	StageDeployConfigured   = "deploy_configured"
	StageDeployed           = "deployed"
	StageApproved           = "approved"
)

// Stage derives the job's lifecycle stage from stored structure. There is no
// persisted stage column; presence of stage fields is the single source of
// truth.
func (j *Job) Stage() string {
	switch {
	case j.Approved:
		return StageApproved
	case j.EndpointName != nil:
		return StageDeployed
	case j.DeployInstanceType != nil && j.DeployInstanceCount != nil:
		return StageDeployConfigured
	case j.TrainJobName != nil:
		return StageTrainLaunched
	case j.TrainArchitectureType != nil:
		return StageTrainConfigured
	case j.PreprocessJobName != nil:
		return StagePreprocessLaunched
	case len(j.ClassConfigs) > 0:
		return StageClassesConfigured
	default:
		return StageCreated
	}
}

// ClassConfig is one entry of a job's class-balanced dataset configuration.
type ClassConfig struct {
	ClassName  string `json:"class_name"`
	ClassCount int    `json:"class_count"`
	Type       string `json:"type"`
}

// DisplayName binds human-facing metadata to one trained class label.
type DisplayName struct {
	Class       string `json:"class"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// ApprovedJob is the projection returned when listing approved jobs.
type ApprovedJob struct {
	JobID       string `json:"job_id"`
	ApproveName string `json:"approve_name"`
}
