// Package mock provides a compute.Provider for tests.
package mock

import (
	"context"

	"github.com/acousticlabs/trainyard/internal/compute"
)

// Provider satisfies compute.Provider with per-method hooks. Unset hooks
// return benign defaults.
type Provider struct {
	Name_ string

	PingFunc             func(ctx context.Context) error
	StartProcessingFunc  func(ctx context.Context, spec compute.ProcessingSpec) (string, error)
	ProcessingStatusFunc func(ctx context.Context, name string) (compute.JobDetails, error)
	StartTrainingFunc    func(ctx context.Context, spec compute.TrainingSpec) (string, error)
	TrainingStatusFunc   func(ctx context.Context, name string) (compute.JobDetails, error)
	DeployModelFunc      func(ctx context.Context, spec compute.DeploySpec) error
	EndpointStatusFunc   func(ctx context.Context, name string) (string, error)
	ScaleEndpointFunc    func(ctx context.Context, name string, instanceCount int) error
	DeleteEndpointFunc   func(ctx context.Context, name string) error
	InvokeFunc           func(ctx context.Context, endpointName string, payload []byte) ([]float64, error)
}

func (p *Provider) Name() string {
	if p.Name_ != "" {
		return p.Name_
	}
	return "mock"
}

func (p *Provider) Ping(ctx context.Context) error {
	if p.PingFunc != nil {
		return p.PingFunc(ctx)
	}
	return nil
}

func (p *Provider) StartProcessingJob(ctx context.Context, spec compute.ProcessingSpec) (string, error) {
	if p.StartProcessingFunc != nil {
		return p.StartProcessingFunc(ctx, spec)
	}
	return spec.Name, nil
}

func (p *Provider) ProcessingJobStatus(ctx context.Context, name string) (compute.JobDetails, error) {
	if p.ProcessingStatusFunc != nil {
		return p.ProcessingStatusFunc(ctx, name)
	}
	return compute.JobDetails{Status: compute.StatusCompleted, ElapsedSeconds: 120}, nil
}

func (p *Provider) StartTrainingJob(ctx context.Context, spec compute.TrainingSpec) (string, error) {
	if p.StartTrainingFunc != nil {
		return p.StartTrainingFunc(ctx, spec)
	}
	return spec.Name, nil
}

func (p *Provider) TrainingJobStatus(ctx context.Context, name string) (compute.JobDetails, error) {
	if p.TrainingStatusFunc != nil {
		return p.TrainingStatusFunc(ctx, name)
	}
	return compute.JobDetails{Status: compute.StatusCompleted, ElapsedSeconds: 600}, nil
}

func (p *Provider) DeployModel(ctx context.Context, spec compute.DeploySpec) error {
	if p.DeployModelFunc != nil {
		return p.DeployModelFunc(ctx, spec)
	}
	return nil
}

func (p *Provider) EndpointStatus(ctx context.Context, name string) (string, error) {
	if p.EndpointStatusFunc != nil {
		return p.EndpointStatusFunc(ctx, name)
	}
	return compute.EndpointInService, nil
}

func (p *Provider) ScaleEndpoint(ctx context.Context, name string, instanceCount int) error {
	if p.ScaleEndpointFunc != nil {
		return p.ScaleEndpointFunc(ctx, name, instanceCount)
	}
	return nil
}

func (p *Provider) DeleteEndpoint(ctx context.Context, name string) error {
	if p.DeleteEndpointFunc != nil {
		return p.DeleteEndpointFunc(ctx, name)
	}
	return nil
}

func (p *Provider) Invoke(ctx context.Context, endpointName string, payload []byte) ([]float64, error) {
	if p.InvokeFunc != nil {
		return p.InvokeFunc(ctx, endpointName, payload)
	}
	return []float64{0.5}, nil
}

// Compile-time check that Provider implements compute.Provider.
var _ compute.Provider = (*Provider)(nil)
