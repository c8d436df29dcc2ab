package services

import (
	"net/http"

	"github.com/DanishBukhari/IntegWithGhl/internal/health_check/handler"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
)

// HealthService handles routing for health and readiness endpoints.
type HealthService struct {
	handler *handler.HealthHandler
}

// NewHealthService creates a new HealthService instance.
func NewHealthService() *HealthService {
	return &HealthService{
		handler: handler.NewHealthHandler(),
	}
}

func (s *HealthService) RegisterRoutes(mux *http.ServeMux) {

	mux.HandleFunc("GET "+constants.LivenessApiPath, s.handler.HandleHealth)
	mux.HandleFunc("GET "+constants.ReadinessApiPath, s.handler.HandleReadiness)
}
