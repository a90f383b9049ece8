package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

func validClassParams() AddClassesParams {
	return AddClassesParams{
		Classes: []models.ClassConfig{
			{ClassName: "gunshot", ClassCount: 3, Type: "raw"},
			{ClassName: "other", ClassCount: 3, Type: "raw"},
		},
		InstanceType:  "ml.m5.large",
		InstanceCount: 1,
		Date:          "2026-08-04",
	}
}

func TestAddClasses(t *testing.T) {
	f := newFixture()
	f.seedJob()
	f.seedDataset(3, "gunshot", "other")

	job, err := f.svc.AddClasses(context.Background(), testJobID, validClassParams())
	require.NoError(t, err)
	require.Len(t, job.ClassConfigs, 2)
	assert.Equal(t, "gunshot", job.ClassConfigs[0].ClassName)
	require.NotNil(t, job.PreprocessInstanceType)
	assert.Equal(t, "ml.m5.large", *job.PreprocessInstanceType)
	assert.Equal(t, models.StageClassesConfigured, job.Stage())
}

func TestAddClassesValidation(t *testing.T) {
	f := newFixture()
	f.seedJob()
	f.seedDataset(3, "gunshot", "other")
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*AddClassesParams)
	}{
		{"no classes", func(p *AddClassesParams) { p.Classes = nil }},
		{"empty class name", func(p *AddClassesParams) { p.Classes[0].ClassName = "" }},
		{"zero count", func(p *AddClassesParams) { p.Classes[0].ClassCount = 0 }},
		{"missing type", func(p *AddClassesParams) { p.Classes[0].Type = "" }},
		{"duplicate class", func(p *AddClassesParams) { p.Classes[1].ClassName = "gunshot" }},
		{"count over available", func(p *AddClassesParams) { p.Classes[0].ClassCount = 99 }},
		{"bad instance type", func(p *AddClassesParams) { p.InstanceType = "t2.micro" }},
		{"instance count too high", func(p *AddClassesParams) { p.InstanceCount = 6 }},
		{"missing date", func(p *AddClassesParams) { p.Date = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validClassParams()
			tt.mutate(&params)
			_, err := f.svc.AddClasses(ctx, testJobID, params)
			requireKind(t, err, KindValidation)
		})
	}
}

func TestAddClassesJobNotFound(t *testing.T) {
	f := newFixture()
	f.seedDataset(3, "gunshot")

	_, err := f.svc.AddClasses(context.Background(), "000000000000000", validClassParams())
	requireKind(t, err, KindNotFound)
}

func TestAutoAddClasses(t *testing.T) {
	f := newFixture()
	f.seedJob()
	f.seedDataset(4, "gunshot", "other", "siren")

	job, err := f.svc.AutoAddClasses(context.Background(), testJobID, AutoAddClassesParams{
		SampleType:    "raw",
		InstanceType:  "ml.m5.large",
		InstanceCount: 1,
		Date:          "2026-08-04",
	})
	require.NoError(t, err)
	require.Len(t, job.ClassConfigs, 3)
	for _, cc := range job.ClassConfigs {
		assert.Equal(t, 4, cc.ClassCount)
		assert.Equal(t, "raw", cc.Type)
	}
}

func TestAutoAddClassesValidation(t *testing.T) {
	f := newFixture()
	f.seedJob()
	ctx := context.Background()

	_, err := f.svc.AutoAddClasses(ctx, testJobID, AutoAddClassesParams{
		InstanceType: "ml.m5.large", InstanceCount: 1, Date: "2026-08-04",
	})
	requireKind(t, err, KindValidation)

	// Empty catalog.
	_, err = f.svc.AutoAddClasses(ctx, testJobID, AutoAddClassesParams{
		SampleType: "raw", InstanceType: "ml.m5.large", InstanceCount: 1, Date: "2026-08-04",
	})
	requireKind(t, err, KindValidation)
}

func TestRemoveClasses(t *testing.T) {
	f := newFixture()
	f.seedJob()
	f.seedDataset(3, "gunshot", "other")
	ctx := context.Background()

	_, err := f.svc.AddClasses(ctx, testJobID, validClassParams())
	require.NoError(t, err)
	f.mutateJob(store.JobUpdate{Set: map[string]any{
		store.FieldPreprocJobName: "preprocess-data-job-1",
	}})
	f.objects.Put(preprocessedCSVKey(testJobName), []byte("csv"))

	require.NoError(t, f.svc.RemoveClasses(ctx, testJobID))

	job, err := f.store.GetJob(ctx, testJobID)
	require.NoError(t, err)
	assert.Nil(t, job.ClassConfigs)
	assert.Nil(t, job.PreprocessInstanceType)
	assert.Nil(t, job.PreprocessJobName)
	assert.Equal(t, models.StageCreated, job.Stage())

	exists, err := f.objects.Exists(ctx, preprocessedCSVKey(testJobName))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLaunchPreprocess(t *testing.T) {
	f := newFixture()
	f.seedJob()
	f.seedDataset(3, "gunshot", "other")
	ctx := context.Background()

	_, err := f.svc.AddClasses(ctx, testJobID, validClassParams())
	require.NoError(t, err)

	var spec compute.ProcessingSpec
	f.compute.StartProcessingFunc = func(ctx context.Context, s compute.ProcessingSpec) (string, error) {
		spec = s
		return s.Name, nil
	}

	handle, err := f.svc.LaunchPreprocess(ctx, testJobID)
	require.NoError(t, err)
	assert.Regexp(t, `^preprocess-data-job-\d+$`, handle)

	assert.Equal(t, "gunshot:3:raw,other:3:raw", spec.Environment["CLASS_CONFIGS"])
	assert.Equal(t, "trainyard-test", spec.Environment["S3_BUCKET"])
	assert.Equal(t, testJobName, spec.Environment["JOB_NAME"])
	assert.Equal(t, "ml.m5.large", spec.InstanceType)
	assert.Equal(t, "s3://trainyard-test/jobs/gunshot-detector/preprocessed_data/", spec.OutputS3URI)

	job, err := f.store.GetJob(ctx, testJobID)
	require.NoError(t, err)
	require.NotNil(t, job.PreprocessJobName)
	assert.Equal(t, handle, *job.PreprocessJobName)
	assert.Equal(t, models.StagePreprocessLaunched, job.Stage())
}

func TestLaunchPreprocessRequiresClasses(t *testing.T) {
	f := newFixture()
	f.seedJob()

	_, err := f.svc.LaunchPreprocess(context.Background(), testJobID)
	requireKind(t, err, KindValidation)
}

func TestPreprocessStatus(t *testing.T) {
	f := newFixture()
	f.seedJob()
	ctx := context.Background()

	_, err := f.svc.PreprocessStatus(ctx, testJobID)
	requireKind(t, err, KindValidation)

	f.mutateJob(store.JobUpdate{Set: map[string]any{
		store.FieldPreprocJobName: "preprocess-data-job-1",
	}})
	f.compute.ProcessingStatusFunc = processingStatus(compute.StatusCompleted)

	details, err := f.svc.PreprocessStatus(ctx, testJobID)
	require.NoError(t, err)
	assert.Equal(t, compute.StatusCompleted, details.Status)
	assert.Equal(t, int64(90), details.ElapsedSeconds)
}

func TestPreprocessedDatasetURL(t *testing.T) {
	f := newFixture()
	f.seedJob()
	f.mutateJob(store.JobUpdate{Set: map[string]any{
		store.FieldPreprocJobName: "preprocess-data-job-1",
	}})
	ctx := context.Background()

	f.compute.ProcessingStatusFunc = processingStatus(compute.StatusInProgress)
	_, err := f.svc.PreprocessedDatasetURL(ctx, testJobID)
	requireKind(t, err, KindConflict)

	f.compute.ProcessingStatusFunc = processingStatus(compute.StatusCompleted)
	url, err := f.svc.PreprocessedDatasetURL(ctx, testJobID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/"+preprocessedCSVKey(testJobName), url)
}
