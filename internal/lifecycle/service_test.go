package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acousticlabs/trainyard/internal/compute"
	computemock "github.com/acousticlabs/trainyard/internal/compute/mock"
	objectmock "github.com/acousticlabs/trainyard/internal/objectstore/mock"
	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// memStore is an in-memory store.Store for lifecycle tests. It applies
// JobUpdate semantics the same way the postgres store does: Set assigns,
// Remove nils.
type memStore struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]*models.Job)}
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) CreateJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.JobID]; ok {
		return store.ErrDuplicateKey
	}
	for _, j := range m.jobs {
		if j.JobName == job.JobName {
			return store.ErrDuplicateKey
		}
	}
	cp := *job
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.jobs[job.JobID] = &cp
	return nil
}

func (m *memStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memStore) UpdateJob(ctx context.Context, jobID string, upd store.JobUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(upd.Set) == 0 && len(upd.Remove) == 0 {
		return store.ErrEmptyUpdate
	}
	j, ok := m.jobs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	if name, ok := upd.Set[store.FieldJobName]; ok {
		for id, other := range m.jobs {
			if id != jobID && other.JobName == name.(string) {
				return store.ErrDuplicateKey
			}
		}
	}
	for col, val := range upd.Set {
		applySet(j, col, val)
	}
	for _, col := range upd.Remove {
		applyRemove(j, col)
	}
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func applySet(j *models.Job, col string, val any) {
	switch col {
	case store.FieldJobName:
		j.JobName = val.(string)
	case store.FieldJobDescription:
		j.JobDescription = val.(string)
	case store.FieldJobDate:
		j.JobDate = val.(string)
	case store.FieldJobType:
		j.JobType = val.(string)
	case store.FieldClassConfigs:
		j.ClassConfigs = val.([]models.ClassConfig)
	case store.FieldPreprocInstanceType:
		v := val.(string)
		j.PreprocessInstanceType = &v
	case store.FieldPreprocInstanceCount:
		v := val.(int)
		j.PreprocessInstanceCount = &v
	case store.FieldPreprocDate:
		v := val.(string)
		j.PreprocessDate = &v
	case store.FieldPreprocJobName:
		v := val.(string)
		j.PreprocessJobName = &v
	case store.FieldTrainArchType:
		v := val.(int)
		j.TrainArchitectureType = &v
	case store.FieldTrainInstanceType:
		v := val.(string)
		j.TrainInstanceType = &v
	case store.FieldTrainInstanceCount:
		v := val.(int)
		j.TrainInstanceCount = &v
	case store.FieldTrainDate:
		v := val.(string)
		j.TrainDate = &v
	case store.FieldTrainJobName:
		v := val.(string)
		j.TrainJobName = &v
	case store.FieldTrainingClasses:
		j.TrainingClasses = val.([]string)
	case store.FieldAccuracy:
		v := val.(float64)
		j.Accuracy = &v
	case store.FieldClassificationReport:
		v := val.(string)
		j.ClassificationReport = &v
	case store.FieldHyperparameters:
		j.Hyperparameters = val.(map[string]string)
	case store.FieldDeployInstanceType:
		v := val.(string)
		j.DeployInstanceType = &v
	case store.FieldDeployInstanceCount:
		v := val.(int)
		j.DeployInstanceCount = &v
	case store.FieldDeployDate:
		v := val.(string)
		j.DeployDate = &v
	case store.FieldEndpointName:
		v := val.(string)
		j.EndpointName = &v
	case store.FieldThreshold:
		v := val.(float64)
		j.Threshold = &v
	case store.FieldApproved:
		j.Approved = val.(bool)
	case store.FieldApproveName:
		v := val.(string)
		j.ApproveName = &v
	case store.FieldApproveDate:
		v := val.(string)
		j.ApproveDate = &v
	case store.FieldDisplayNames:
		j.DisplayNames = val.([]models.DisplayName)
	default:
		panic("unknown column " + col)
	}
}

func applyRemove(j *models.Job, col string) {
	switch col {
	case store.FieldClassConfigs:
		j.ClassConfigs = nil
	case store.FieldPreprocInstanceType:
		j.PreprocessInstanceType = nil
	case store.FieldPreprocInstanceCount:
		j.PreprocessInstanceCount = nil
	case store.FieldPreprocDate:
		j.PreprocessDate = nil
	case store.FieldPreprocJobName:
		j.PreprocessJobName = nil
	case store.FieldTrainArchType:
		j.TrainArchitectureType = nil
	case store.FieldTrainInstanceType:
		j.TrainInstanceType = nil
	case store.FieldTrainInstanceCount:
		j.TrainInstanceCount = nil
	case store.FieldTrainDate:
		j.TrainDate = nil
	case store.FieldTrainJobName:
		j.TrainJobName = nil
	case store.FieldTrainingClasses:
		j.TrainingClasses = nil
	case store.FieldAccuracy:
		j.Accuracy = nil
	case store.FieldClassificationReport:
		j.ClassificationReport = nil
	case store.FieldHyperparameters:
		j.Hyperparameters = nil
	case store.FieldDeployInstanceType:
		j.DeployInstanceType = nil
	case store.FieldDeployInstanceCount:
		j.DeployInstanceCount = nil
	case store.FieldDeployDate:
		j.DeployDate = nil
	case store.FieldEndpointName:
		j.EndpointName = nil
	case store.FieldThreshold:
		j.Threshold = nil
	case store.FieldApproveName:
		j.ApproveName = nil
	case store.FieldApproveDate:
		j.ApproveDate = nil
	case store.FieldDisplayNames:
		j.DisplayNames = nil
	default:
		panic("unknown column " + col)
	}
}

func (m *memStore) DeleteJob(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jobID]; !ok {
		return store.ErrNotFound
	}
	delete(m.jobs, jobID)
	return nil
}

func (m *memStore) ListJobs(ctx context.Context) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*models.Job
	for _, j := range m.jobs {
		cp := *j
		jobs = append(jobs, &cp)
	}
	return jobs, nil
}

func (m *memStore) ListJobIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.jobs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStore) JobNameExists(ctx context.Context, name string, excludeJobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, j := range m.jobs {
		if id != excludeJobID && j.JobName == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListApprovedJobs(ctx context.Context) ([]*models.ApprovedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var approved []*models.ApprovedJob
	for _, j := range m.jobs {
		if j.Approved {
			a := &models.ApprovedJob{JobID: j.JobID}
			if j.ApproveName != nil {
				a.ApproveName = *j.ApproveName
			}
			approved = append(approved, a)
		}
	}
	return approved, nil
}

func (m *memStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	return nil, nil
}
func (m *memStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error  { return nil }
func (m *memStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error    { return nil }
func (m *memStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)     { return nil, nil }
func (m *memStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error          { return nil }

var _ store.Store = (*memStore)(nil)

// memCache is a minimal in-memory cache.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }

func (c *memCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	return 1, nil
}

// fixture wires a Service with in-memory doubles.
type fixture struct {
	svc     *Service
	store   *memStore
	compute *computemock.Provider
	objects *objectmock.Store
	cache   *memCache
}

func newFixture() *fixture {
	f := &fixture{
		store:   newMemStore(),
		compute: &computemock.Provider{},
		objects: objectmock.NewStore(),
		cache:   newMemCache(),
	}
	f.svc = NewService(f.store, f.compute, f.objects, f.cache, Config{
		Bucket:       "trainyard-test",
		PresignTTL:   time.Minute,
		ClassListTTL: time.Minute,
	})
	return f
}

const (
	testJobID   = "111112222233333"
	testJobName = "gunshot-detector"
)

// seedJob inserts a baseline job and returns it.
func (f *fixture) seedJob() *models.Job {
	job := &models.Job{
		JobID:          testJobID,
		JobName:        testJobName,
		JobDescription: "detects gunshots",
		JobDate:        "2026-08-01",
		JobType:        models.JobTypeBinary,
	}
	if err := f.store.CreateJob(context.Background(), job); err != nil {
		panic(err)
	}
	return job
}

// mutateJob applies an update directly to the backing store.
func (f *fixture) mutateJob(upd store.JobUpdate) {
	if err := f.store.UpdateJob(context.Background(), testJobID, upd); err != nil {
		panic(err)
	}
}

// seedDataset populates the object catalog with n objects per class.
func (f *fixture) seedDataset(n int, classes ...string) {
	for _, class := range classes {
		for i := 0; i < n; i++ {
			f.objects.Put(classPrefix(class)+objName(i), []byte("wav"))
		}
	}
}

func objName(i int) string {
	return "sample-" + string(rune('a'+i)) + ".wav"
}

// processingStatus returns a hook reporting a fixed status.
func processingStatus(status compute.Status) func(context.Context, string) (compute.JobDetails, error) {
	return func(ctx context.Context, name string) (compute.JobDetails, error) {
		d := compute.JobDetails{Status: status, ElapsedSeconds: -1}
		if status == compute.StatusCompleted {
			d.ElapsedSeconds = 90
		}
		return d, nil
	}
}
