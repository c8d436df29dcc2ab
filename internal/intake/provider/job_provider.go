package provider

import (
	"github.com/DanishBukhari/IntegWithGhl/internal/intake/service"
)

// JobIntakeProviderInterface defines the interface for the job intake provider.
type JobIntakeProviderInterface interface {
	GetJobIntakeService() service.JobIntakeServiceInterface
}

// JobIntakeProvider is the default implementation of the JobIntakeProviderInterface.
type JobIntakeProvider struct{}

// NewJobIntakeProvider creates a new instance of JobIntakeProvider.
func NewJobIntakeProvider() JobIntakeProviderInterface {

	return &JobIntakeProvider{}
}

// GetJobIntakeService returns the job intake service instance.
func (jp *JobIntakeProvider) GetJobIntakeService() service.JobIntakeServiceInterface {

	return service.GetJobIntakeService()
}
