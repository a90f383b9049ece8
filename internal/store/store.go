package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/acousticlabs/trainyard/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrUnknownField = errors.New("unknown job field")
var ErrEmptyUpdate = errors.New("update has no fields")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	UpdateJob(ctx context.Context, jobID string, upd JobUpdate) error
	DeleteJob(ctx context.Context, jobID string) error
	ListJobs(ctx context.Context) ([]*models.Job, error)
	ListJobIDs(ctx context.Context) ([]string, error)
	JobNameExists(ctx context.Context, name string, excludeJobID string) (bool, error)
	ListApprovedJobs(ctx context.Context) ([]*models.ApprovedJob, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// JobUpdate is a partial update against a job row. Set assigns column
// values; Remove sets columns back to NULL, erasing an optional stage field.
// A single statement applies both, so an operation like approval commits all
// of its fields atomically.
type JobUpdate struct {
	Set    map[string]any
	Remove []string
}

// Fields updatable through JobUpdate, by column name.
const (
	FieldJobName              = "job_name"
	FieldJobDescription       = "job_description"
	FieldJobDate              = "job_date"
	FieldJobType              = "job_type"
	FieldClassConfigs         = "class_configs"
	FieldPreprocInstanceType  = "preprocess_instance_type"
	FieldPreprocInstanceCount = "preprocess_instance_count"
	FieldPreprocDate          = "preprocess_date"
	FieldPreprocJobName       = "preprocess_job_name"
	FieldTrainArchType        = "train_architecture_type"
	FieldTrainInstanceType    = "train_instance_type"
	FieldTrainInstanceCount   = "train_instance_count"
	FieldTrainDate            = "train_date"
	FieldTrainJobName         = "train_job_name"
	FieldTrainingClasses      = "training_classes"
	FieldAccuracy             = "accuracy"
	FieldClassificationReport = "classification_report"
	FieldHyperparameters      = "hyperparameters"
	FieldDeployInstanceType   = "deploy_instance_type"
	FieldDeployInstanceCount  = "deploy_instance_count"
	FieldDeployDate           = "deploy_date"
	FieldEndpointName         = "endpoint_name"
	FieldThreshold            = "threshold"
	FieldApproved             = "approved"
	FieldApproveName          = "approve_name"
	FieldApproveDate          = "approve_date"
	FieldDisplayNames         = "display_names"
)
