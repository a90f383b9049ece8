package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acousticlabs/trainyard/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Jobs ---

const jobColumns = `job_id, job_name, job_description, job_date, job_type,
	class_configs,
	preprocess_instance_type, preprocess_instance_count, preprocess_date, preprocess_job_name,
	train_architecture_type, train_instance_type, train_instance_count, train_date, train_job_name,
	training_classes, accuracy, classification_report, hyperparameters,
	deploy_instance_type, deploy_instance_count, deploy_date, endpoint_name,
	threshold, approved, approve_name, approve_date, display_names,
	created_at, updated_at`

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	classConfigs, err := jsonbOrNull(job.ClassConfigs, len(job.ClassConfigs) > 0)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (job_id, job_name, job_description, job_date, job_type, class_configs, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`,
		job.JobID, job.JobName, job.JobDescription, job.JobDate, job.JobType, classConfigs)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE job_id = $1`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// jsonbFields are the columns stored as JSONB; their Set values are
// marshaled before being bound.
var jsonbFields = map[string]bool{
	FieldClassConfigs:    true,
	FieldTrainingClasses: true,
	FieldHyperparameters: true,
	FieldDisplayNames:    true,
}

// updatableFields is the whitelist of columns JobUpdate may touch.
var updatableFields = map[string]bool{
	FieldJobName:              true,
	FieldJobDescription:       true,
	FieldJobDate:              true,
	FieldJobType:              true,
	FieldClassConfigs:         true,
	FieldPreprocInstanceType:  true,
	FieldPreprocInstanceCount: true,
	FieldPreprocDate:          true,
	FieldPreprocJobName:       true,
	FieldTrainArchType:        true,
	FieldTrainInstanceType:    true,
	FieldTrainInstanceCount:   true,
	FieldTrainDate:            true,
	FieldTrainJobName:         true,
	FieldTrainingClasses:      true,
	FieldAccuracy:             true,
	FieldClassificationReport: true,
	FieldHyperparameters:      true,
	FieldDeployInstanceType:   true,
	FieldDeployInstanceCount:  true,
	FieldDeployDate:           true,
	FieldEndpointName:         true,
	FieldThreshold:            true,
	FieldApproved:             true,
	FieldApproveName:          true,
	FieldApproveDate:          true,
	FieldDisplayNames:         true,
}

func (s *PostgresStore) UpdateJob(ctx context.Context, jobID string, upd JobUpdate) error {
	if len(upd.Set) == 0 && len(upd.Remove) == 0 {
		return ErrEmptyUpdate
	}

	// Build SET clause dynamically
	assignments := []string{"updated_at = NOW()"}
	args := []any{jobID}
	argIdx := 2

	for col, val := range upd.Set {
		if !updatableFields[col] {
			return fmt.Errorf("%w: %s", ErrUnknownField, col)
		}
		if jsonbFields[col] {
			b, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", col, err)
			}
			val = b
		}
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}
	for _, col := range upd.Remove {
		if !updatableFields[col] {
			return fmt.Errorf("%w: %s", ErrUnknownField, col)
		}
		assignments = append(assignments, col+" = NULL")
	}

	query := "UPDATE jobs SET " + strings.Join(assignments, ", ") + " WHERE job_id = $1"

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteJob(ctx context.Context, jobID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context) ([]*models.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) ListJobIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT job_id FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) JobNameExists(ctx context.Context, name string, excludeJobID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE job_name = $1 AND job_id <> $2)`,
		name, excludeJobID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("job name exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListApprovedJobs(ctx context.Context) ([]*models.ApprovedJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT job_id, approve_name FROM jobs WHERE approved = TRUE ORDER BY approve_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list approved jobs: %w", err)
	}
	defer rows.Close()

	var approved []*models.ApprovedJob
	for rows.Next() {
		var a models.ApprovedJob
		var name *string
		if err := rows.Scan(&a.JobID, &name); err != nil {
			return nil, fmt.Errorf("scan approved job: %w", err)
		}
		if name != nil {
			a.ApproveName = *name
		}
		approved = append(approved, &a)
	}
	return approved, rows.Err()
}

// scanJob reads one row of jobColumns into a Job. JSONB columns come back
// as raw bytes and are unmarshaled here; NULL leaves the field nil.
func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	var classConfigs, trainingClasses, hyperparameters, displayNames []byte

	err := row.Scan(
		&j.JobID, &j.JobName, &j.JobDescription, &j.JobDate, &j.JobType,
		&classConfigs,
		&j.PreprocessInstanceType, &j.PreprocessInstanceCount, &j.PreprocessDate, &j.PreprocessJobName,
		&j.TrainArchitectureType, &j.TrainInstanceType, &j.TrainInstanceCount, &j.TrainDate, &j.TrainJobName,
		&trainingClasses, &j.Accuracy, &j.ClassificationReport, &hyperparameters,
		&j.DeployInstanceType, &j.DeployInstanceCount, &j.DeployDate, &j.EndpointName,
		&j.Threshold, &j.Approved, &j.ApproveName, &j.ApproveDate, &displayNames,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalInto(classConfigs, &j.ClassConfigs); err != nil {
		return nil, fmt.Errorf("class_configs: %w", err)
	}
	if err := unmarshalInto(trainingClasses, &j.TrainingClasses); err != nil {
		return nil, fmt.Errorf("training_classes: %w", err)
	}
	if err := unmarshalInto(hyperparameters, &j.Hyperparameters); err != nil {
		return nil, fmt.Errorf("hyperparameters: %w", err)
	}
	if err := unmarshalInto(displayNames, &j.DisplayNames); err != nil {
		return nil, fmt.Errorf("display_names: %w", err)
	}
	return &j, nil
}

func unmarshalInto(raw []byte, dst any) error {
	if raw == nil {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func jsonbOrNull(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	return collectAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	return collectAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
