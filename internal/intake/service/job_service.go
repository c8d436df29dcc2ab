package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/DanishBukhari/IntegWithGhl/internal/intake/model"
	"github.com/DanishBukhari/IntegWithGhl/internal/mapper"
	"github.com/DanishBukhari/IntegWithGhl/internal/relay"
	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/errors"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
)

// SourceClient is the slice of the field service client the intake path needs.
type SourceClient interface {
	CreateCompany(ctx context.Context, company servicem8.Company) (string, error)
	CreateJob(ctx context.Context, job servicem8.Job) (string, error)
}

// PhotoRelay relays uploaded photos onto created records; optional.
type PhotoRelay interface {
	RelayPhotos(ctx context.Context, jobUUID, companyUUID string, refs []relay.PhotoRef) int
}

// JobIntakeServiceInterface defines the interface for the job intake service.
type JobIntakeServiceInterface interface {
	CreateJob(ctx context.Context, request model.JobRequest) (*model.JobResponse, error)
}

// JobIntakeService creates a company and job from an inbound request. A
// short debounce keyed on the inbound correlation id drops duplicates the
// caller fires in quick succession; it is separate from the poll routines'
// durable dedup sets and never touches them.
type JobIntakeService struct {
	source         SourceClient
	relay          PhotoRelay
	debounceWindow time.Duration
	now            func() time.Time

	mu     sync.Mutex
	recent map[string]time.Time
}

var (
	instance *JobIntakeService
	once     sync.Once
)

// Initialize wires the singleton service. Safe to call multiple times; only
// the first call takes effect.
func Initialize(source SourceClient, photoRelay PhotoRelay, debounceWindow time.Duration) {
	once.Do(func() {
		instance = &JobIntakeService{
			source:         source,
			relay:          photoRelay,
			debounceWindow: debounceWindow,
			now:            time.Now,
			recent:         make(map[string]time.Time),
		}
	})
}

// GetJobIntakeService returns the singleton service instance.
func GetJobIntakeService() JobIntakeServiceInterface {
	return instance
}

// NewJobIntakeService builds an unshared instance; used by tests.
func NewJobIntakeService(source SourceClient, photoRelay PhotoRelay, debounceWindow time.Duration, now func() time.Time) *JobIntakeService {
	if now == nil {
		now = time.Now
	}
	return &JobIntakeService{
		source:         source,
		relay:          photoRelay,
		debounceWindow: debounceWindow,
		now:            now,
		recent:         make(map[string]time.Time),
	}
}

// CreateJob performs the mandatory company and job creations, then the
// optional photo relay. Optional-step failures degrade silently; the request
// still succeeds.
func (s *JobIntakeService) CreateJob(ctx context.Context, request model.JobRequest) (*model.JobResponse, error) {
	logger := log.GetLogger()

	name := mapper.ComposeName(request.FirstName, request.LastName)
	if name == "" && mapper.NormalizeEmail(request.Email) == "" {
		return nil, errors.NewClientError(errors.CreateJobMissingFields, http.StatusBadRequest)
	}
	if request.Description == "" {
		return nil, errors.NewClientError(errors.CreateJobMissingFields, http.StatusBadRequest)
	}

	if err := s.debounce(request.ContactID); err != nil {
		return nil, err
	}

	company := servicem8.Company{
		Name:            name,
		Email:           mapper.NormalizeEmail(request.Email),
		AddressStreet:   request.AddressStreet,
		AddressCity:     request.AddressCity,
		AddressState:    request.AddressState,
		AddressPostcode: request.AddressPostcode,
		AddressCountry:  request.AddressCountry,
		Active:          1,
	}
	if company.Name == "" {
		company.Name = company.Email
	}
	companyUUID, err := s.source.CreateCompany(ctx, company)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileCreatingCompany, err)
	}

	job := servicem8.Job{
		CompanyUUID:    companyUUID,
		Status:         "Work Order",
		JobDescription: mapper.BuildJobDescription(mapper.NewCorrelationID(request.ContactID), request.Description),
		Active:         1,
	}
	jobUUID, err := s.source.CreateJob(ctx, job)
	if err != nil {
		return nil, errors.NewServerError(errors.ErrWhileCreatingJob, err)
	}

	if s.relay != nil && len(request.Photos) > 0 {
		refs := make([]relay.PhotoRef, 0, len(request.Photos))
		for _, photo := range request.Photos {
			refs = append(refs, relay.PhotoRef{PrimaryURL: photo.URL, FallbackURL: photo.FallbackURL})
		}
		relayed := s.relay.RelayPhotos(ctx, jobUUID, companyUUID, refs)
		if relayed < len(refs) {
			logger.Warn("Some photos were not relayed",
				log.String("jobUuid", jobUUID),
				log.Int("requested", len(refs)),
				log.Int("relayed", relayed))
		}
	}

	return &model.JobResponse{JobUUID: jobUUID, CompanyUUID: companyUUID}, nil
}

// debounce rejects a repeat correlation id seen inside the configured
// window. Entries older than the window are pruned on each call, so the map
// stays bounded by recent traffic.
func (s *JobIntakeService) debounce(contactID string) error {
	if contactID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, seen := range s.recent {
		if now.Sub(seen) >= s.debounceWindow {
			delete(s.recent, id)
		}
	}
	if seen, ok := s.recent[contactID]; ok && now.Sub(seen) < s.debounceWindow {
		return errors.NewClientError(errors.CreateJobDuplicate, http.StatusConflict)
	}
	s.recent[contactID] = now
	return nil
}
