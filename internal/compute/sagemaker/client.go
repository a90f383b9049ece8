// Package sagemaker implements the compute.Provider interface on top of
// AWS SageMaker.
package sagemaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"

	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/config"
)

// Client talks to SageMaker and the SageMaker runtime.
type Client struct {
	sm      *sagemaker.Client
	runtime *sagemakerruntime.Client
	cfg     config.ComputeConfig
}

// NewClient creates a Client using the default AWS credential chain.
func NewClient(ctx context.Context, cfg config.ComputeConfig) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Client{
		sm:      sagemaker.NewFromConfig(awsCfg),
		runtime: sagemakerruntime.NewFromConfig(awsCfg),
		cfg:     cfg,
	}, nil
}

func (c *Client) Name() string { return "sagemaker" }

// Ping issues the cheapest possible list call to verify reachability and
// credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.sm.ListEndpoints(ctx, &sagemaker.ListEndpointsInput{
		MaxResults: aws.Int32(1),
	})
	return err
}

// --- Processing ---

func (c *Client) StartProcessingJob(ctx context.Context, spec compute.ProcessingSpec) (string, error) {
	_, err := c.sm.CreateProcessingJob(ctx, &sagemaker.CreateProcessingJobInput{
		ProcessingJobName: aws.String(spec.Name),
		RoleArn:           aws.String(c.cfg.RoleARN),
		AppSpecification: &types.AppSpecification{
			ImageUri: aws.String(c.cfg.PreprocessImage),
		},
		Environment: spec.Environment,
		ProcessingResources: &types.ProcessingResources{
			ClusterConfig: &types.ProcessingClusterConfig{
				InstanceCount:  aws.Int32(int32(spec.InstanceCount)),
				InstanceType:   types.ProcessingInstanceType(spec.InstanceType),
				VolumeSizeInGB: aws.Int32(c.cfg.PreprocessVolGB),
			},
		},
		ProcessingOutputConfig: &types.ProcessingOutputConfig{
			Outputs: []types.ProcessingOutput{{
				OutputName: aws.String("preprocessed"),
				S3Output: &types.ProcessingS3Output{
					S3Uri:        aws.String(spec.OutputS3URI),
					LocalPath:    aws.String("/opt/ml/processing/output"),
					S3UploadMode: types.ProcessingS3UploadModeEndOfJob,
				},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create processing job: %w", err)
	}
	return spec.Name, nil
}

func (c *Client) ProcessingJobStatus(ctx context.Context, name string) (compute.JobDetails, error) {
	out, err := c.sm.DescribeProcessingJob(ctx, &sagemaker.DescribeProcessingJobInput{
		ProcessingJobName: aws.String(name),
	})
	if err != nil {
		return compute.JobDetails{}, mapDescribeError("processing job", err)
	}

	details := compute.JobDetails{
		Status:         compute.NormalizeStatus(string(out.ProcessingJobStatus)),
		ElapsedSeconds: -1,
	}
	if out.FailureReason != nil {
		details.FailureReason = *out.FailureReason
	}
	if details.Status == compute.StatusCompleted && out.ProcessingStartTime != nil && out.ProcessingEndTime != nil {
		details.ElapsedSeconds = int64(out.ProcessingEndTime.Sub(*out.ProcessingStartTime) / time.Second)
	}
	return details, nil
}

// --- Training ---

func (c *Client) StartTrainingJob(ctx context.Context, spec compute.TrainingSpec) (string, error) {
	maxRuntime := int32(c.cfg.MaxTrainRuntime / time.Second)

	_, err := c.sm.CreateTrainingJob(ctx, &sagemaker.CreateTrainingJobInput{
		TrainingJobName: aws.String(spec.Name),
		RoleArn:         aws.String(c.cfg.RoleARN),
		AlgorithmSpecification: &types.AlgorithmSpecification{
			TrainingImage:     aws.String(c.cfg.TrainImage),
			TrainingInputMode: types.TrainingInputModeFile,
		},
		HyperParameters: spec.Hyperparameters,
		InputDataConfig: []types.Channel{{
			ChannelName: aws.String("training"),
			ContentType: aws.String("text/csv"),
			DataSource: &types.DataSource{
				S3DataSource: &types.S3DataSource{
					S3DataType:             types.S3DataTypeS3Prefix,
					S3Uri:                  aws.String(spec.InputS3URI),
					S3DataDistributionType: types.S3DataDistributionFullyReplicated,
				},
			},
		}},
		OutputDataConfig: &types.OutputDataConfig{
			S3OutputPath: aws.String(spec.OutputS3URI),
		},
		ResourceConfig: &types.ResourceConfig{
			InstanceType:   types.TrainingInstanceType(spec.InstanceType),
			InstanceCount:  aws.Int32(int32(spec.InstanceCount)),
			VolumeSizeInGB: aws.Int32(c.cfg.TrainVolumeGB),
		},
		StoppingCondition: &types.StoppingCondition{
			MaxRuntimeInSeconds: aws.Int32(maxRuntime),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create training job: %w", err)
	}
	return spec.Name, nil
}

func (c *Client) TrainingJobStatus(ctx context.Context, name string) (compute.JobDetails, error) {
	out, err := c.sm.DescribeTrainingJob(ctx, &sagemaker.DescribeTrainingJobInput{
		TrainingJobName: aws.String(name),
	})
	if err != nil {
		return compute.JobDetails{}, mapDescribeError("training job", err)
	}

	details := compute.JobDetails{
		Status:         compute.NormalizeStatus(string(out.TrainingJobStatus)),
		ElapsedSeconds: -1,
	}
	if out.FailureReason != nil {
		details.FailureReason = *out.FailureReason
	}
	if details.Status == compute.StatusCompleted && out.TrainingTimeInSeconds != nil {
		details.ElapsedSeconds = int64(*out.TrainingTimeInSeconds)
	}
	return details, nil
}

// --- Deployment ---

// DeployModel registers the model artifact, writes an endpoint config and
// creates the endpoint. Resource names are derived from the endpoint name.
func (c *Client) DeployModel(ctx context.Context, spec compute.DeploySpec) error {
	now := time.Now().Unix()
	modelName := fmt.Sprintf("%s-model-%d", spec.EndpointName, now)
	configName := fmt.Sprintf("%s-config-%d", spec.EndpointName, now)

	_, err := c.sm.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(modelName),
		ExecutionRoleArn: aws.String(c.cfg.RoleARN),
		PrimaryContainer: &types.ContainerDefinition{
			Image:        aws.String(c.cfg.InferenceImage),
			ModelDataUrl: aws.String(spec.ModelDataURL),
		},
	})
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}

	_, err = c.sm.CreateEndpointConfig(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(configName),
		ProductionVariants: []types.ProductionVariant{{
			VariantName:          aws.String("AllTraffic"),
			ModelName:            aws.String(modelName),
			InstanceType:         types.ProductionVariantInstanceType(spec.InstanceType),
			InitialInstanceCount: aws.Int32(int32(spec.InstanceCount)),
		}},
	})
	if err != nil {
		return fmt.Errorf("create endpoint config: %w", err)
	}

	_, err = c.sm.CreateEndpoint(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(spec.EndpointName),
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return fmt.Errorf("create endpoint: %w", err)
	}
	return nil
}

func (c *Client) EndpointStatus(ctx context.Context, name string) (string, error) {
	out, err := c.sm.DescribeEndpoint(ctx, &sagemaker.DescribeEndpointInput{
		EndpointName: aws.String(name),
	})
	if err != nil {
		return "", mapDescribeError("endpoint", err)
	}
	return string(out.EndpointStatus), nil
}

// ScaleEndpoint clones the endpoint's current config with a new instance
// count and repoints the endpoint at the clone. SageMaker configs are
// immutable, so scaling always creates a fresh config.
func (c *Client) ScaleEndpoint(ctx context.Context, name string, instanceCount int) error {
	ep, err := c.sm.DescribeEndpoint(ctx, &sagemaker.DescribeEndpointInput{
		EndpointName: aws.String(name),
	})
	if err != nil {
		return mapDescribeError("endpoint", err)
	}

	cfg, err := c.sm.DescribeEndpointConfig(ctx, &sagemaker.DescribeEndpointConfigInput{
		EndpointConfigName: ep.EndpointConfigName,
	})
	if err != nil {
		return mapDescribeError("endpoint config", err)
	}

	variants := make([]types.ProductionVariant, 0, len(cfg.ProductionVariants))
	for _, v := range cfg.ProductionVariants {
		v.InitialInstanceCount = aws.Int32(int32(instanceCount))
		variants = append(variants, v)
	}

	newName := fmt.Sprintf("%s-config-%d", name, time.Now().Unix())
	_, err = c.sm.CreateEndpointConfig(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(newName),
		ProductionVariants: variants,
	})
	if err != nil {
		return fmt.Errorf("create endpoint config: %w", err)
	}

	_, err = c.sm.UpdateEndpoint(ctx, &sagemaker.UpdateEndpointInput{
		EndpointName:       aws.String(name),
		EndpointConfigName: aws.String(newName),
	})
	if err != nil {
		return fmt.Errorf("update endpoint: %w", err)
	}
	return nil
}

func (c *Client) DeleteEndpoint(ctx context.Context, name string) error {
	_, err := c.sm.DeleteEndpoint(ctx, &sagemaker.DeleteEndpointInput{
		EndpointName: aws.String(name),
	})
	if err != nil {
		return mapDescribeError("endpoint", err)
	}
	return nil
}

// --- Inference ---

// invokeContext bounds an inference call by the configured timeout. A zero
// timeout leaves the caller's context untouched.
func invokeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) Invoke(ctx context.Context, endpointName string, payload []byte) ([]float64, error) {
	ctx, cancel := invokeContext(ctx, c.cfg.InvokeTimeout)
	defer cancel()

	out, err := c.runtime.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpointName),
		ContentType:  aws.String("application/json"),
		Body:         payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke endpoint: %w", err)
	}
	return decodeScores(out.Body)
}

// decodeScores accepts the response shapes the inference containers emit: a
// flat vector, a batch of one vector, or either wrapped in "predictions".
func decodeScores(body []byte) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var batch [][]float64
	if err := json.Unmarshal(body, &batch); err == nil && len(batch) > 0 && len(batch[0]) > 0 {
		return batch[0], nil
	}

	var wrapped struct {
		Predictions json.RawMessage `json:"predictions"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Predictions != nil {
		return decodeScores(wrapped.Predictions)
	}

	return nil, fmt.Errorf("%w: %q", compute.ErrInvalidResponse, truncate(body, 200))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

func mapDescribeError(kind string, err error) error {
	var rnf *types.ResourceNotFound
	if errors.As(err, &rnf) {
		return fmt.Errorf("%s: %w", kind, compute.ErrNotFound)
	}
	return fmt.Errorf("describe %s: %w", kind, err)
}

// Compile-time check that Client implements Provider.
var _ compute.Provider = (*Client)(nil)
