package services

import (
	"fmt"
	"net/http"

	"github.com/DanishBukhari/IntegWithGhl/internal/intake/handler"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
)

// JobIntakeService handles routing for the job intake endpoint.
type JobIntakeService struct {
	handler *handler.JobHandler
}

// NewJobIntakeService creates a new JobIntakeService instance.
func NewJobIntakeService() *JobIntakeService {
	return &JobIntakeService{
		handler: handler.NewJobHandler(),
	}
}

func (s *JobIntakeService) RegisterRoutes(mux *http.ServeMux, apiBasePath string) {

	mux.HandleFunc(fmt.Sprintf("POST %s%s", apiBasePath, constants.JobsApiPath), s.handler.CreateJob)
}
