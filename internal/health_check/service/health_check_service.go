package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/statestore"
)

var (
	instance *HealthCheckService
	once     sync.Once
)

// HealthCheckServiceInterface defines the service interface.
type HealthCheckServiceInterface interface {
	CheckReadiness() error
}

// HealthCheckService is the default implementation.
type HealthCheckService struct {
	store *statestore.Store
}

// Initialize sets up the health check service with its state store dependency.
func Initialize(store *statestore.Store) {
	once.Do(func() {
		instance = &HealthCheckService{store: store}
	})
}

// GetHealthCheckService returns the HealthCheck service instance.
func GetHealthCheckService() HealthCheckServiceInterface {
	if instance == nil {
		return &HealthCheckService{}
	}
	return instance
}

func (h HealthCheckService) CheckReadiness() error {
	logger := log.GetLogger()
	if logger == nil {
		return errors.New("logger not initialized")
	}

	if h.store == nil {
		return errors.New("state store not initialized")
	}

	// A successful load proves the state file is readable and well formed.
	if _, err := h.store.Load(); err != nil {
		return fmt.Errorf("state store readiness check failed: %v", err)
	}

	return nil
}
