package managers

import (
	"net/http"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/services"
)

type ServiceManagerInterface interface {
	RegisterServices(apiBasePath string) error
}

type ServiceManager struct {
	mux *http.ServeMux
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(mux *http.ServeMux) ServiceManagerInterface {

	return &ServiceManager{
		mux: mux,
	}
}

func (sm *ServiceManager) RegisterServices(apiBasePath string) error {

	jobIntakeService := services.NewJobIntakeService()
	jobIntakeService.RegisterRoutes(sm.mux, apiBasePath)

	healthService := services.NewHealthService()
	healthService.RegisterRoutes(sm.mux)

	return nil
}
