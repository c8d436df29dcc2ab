package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DanishBukhari/IntegWithGhl/internal/highlevel"
	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
	errors2 "github.com/DanishBukhari/IntegWithGhl/internal/system/errors"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/statestore"
)

// SourceClient is the slice of the field service API the engine consumes.
type SourceClient interface {
	ListChangedContacts(ctx context.Context, since time.Time) ([]servicem8.Contact, error)
	ListChangedPayments(ctx context.Context, since time.Time) ([]servicem8.JobPayment, error)
	GetJob(ctx context.Context, jobUUID string) (*servicem8.Job, error)
	GetCompany(ctx context.Context, companyUUID string) (*servicem8.Company, error)
	ListJobActivities(ctx context.Context, jobUUID string) ([]servicem8.JobActivity, error)
}

// TargetClient is the slice of the CRM API the engine consumes.
type TargetClient interface {
	LookupContactByEmail(ctx context.Context, email string) (*highlevel.Contact, error)
	CreateContact(ctx context.Context, payload highlevel.ContactPayload) (*highlevel.Contact, error)
	TriggerWebhook(ctx context.Context, payload highlevel.WebhookPayload) error
}

// StateStore persists the cursor and dedup sets between cycles.
type StateStore interface {
	Load() (*statestore.SyncState, error)
	Save(state *statestore.SyncState) error
}

// Config assembles an Engine.
type Config struct {
	Source   SourceClient
	Target   TargetClient
	Store    StateStore
	Policy   PaymentPolicy
	Lookback time.Duration
	// Now is the clock used to recompute the lookback window each cycle.
	// Nil means time.Now.
	Now func() time.Time
}

// Engine drives the incremental reconciliation between the two systems.
// The persisted state is loaded once and shared by every routine as a
// single aggregate; a cycle fetches the changed entities, handles each one
// in turn, and persists a snapshot of the aggregate exactly once at the
// end. Overlapping routines therefore append to the same sets instead of
// clobbering each other's keys, and an aborted cycle persists nothing.
type Engine struct {
	source   SourceClient
	target   TargetClient
	store    StateStore
	policy   PaymentPolicy
	lookback time.Duration
	now      func() time.Time

	stateMu sync.Mutex
	state   *statestore.SyncState
}

func New(cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = 20 * time.Minute
	}
	return &Engine{
		source:   cfg.Source,
		target:   cfg.Target,
		store:    cfg.Store,
		policy:   cfg.Policy,
		lookback: lookback,
		now:      now,
	}
}

// CycleReport summarizes one poll cycle.
type CycleReport struct {
	Routine  string
	Fetched  int
	Applied  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

func (r *CycleReport) tally(o Outcome) {
	switch o.Status {
	case StatusApplied:
		r.Applied++
	case StatusSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// errCycleAborted wraps failures that must stop the whole cycle before any
// persisted-state mutation (credential rejection, upstream wholly down).
var errCycleAborted = errors.New("cycle aborted")

// isCycleFatal reports whether an entity-level error must abort the cycle
// instead of being swallowed at the entity boundary.
func isCycleFatal(err error) bool {
	var authErr *errors2.AuthError
	return errors.As(err, &authErr)
}

// isPermanent reports whether an error writes the owning entity off for good.
func isPermanent(err error) bool {
	var permErr *errors2.PermanentError
	return errors.As(err, &permErr)
}

// window returns the change-detection lower bound, recomputed from the wall
// clock rather than the stored cursor. An entity edited near a boundary can
// therefore appear in two consecutive polls; the dedup sets are what make
// that overlap safe.
func (e *Engine) window() time.Time {
	return e.now().Add(-e.lookback)
}

// loadState returns the shared state aggregate, reading the persisted
// snapshot on first use. Both poll routines mutate this one instance, so a
// routine's Save always carries the keys its sibling recorded.
func (e *Engine) loadState() (*statestore.SyncState, error) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.state == nil {
		state, err := e.store.Load()
		if err != nil {
			return nil, err
		}
		e.state = state
	}
	return e.state, nil
}

func (e *Engine) finishCycle(state *statestore.SyncState, report *CycleReport, started time.Time) (*CycleReport, error) {
	state.SetLastPollTimestamp(e.now().Unix())
	report.Duration = e.now().Sub(started)
	if err := e.store.Save(state); err != nil {
		return report, err
	}
	logger := log.GetLogger()
	logger.Info("Poll cycle finished",
		log.String("routine", report.Routine),
		log.Int("fetched", report.Fetched),
		log.Int("applied", report.Applied),
		log.Int("skipped", report.Skipped),
		log.Int("failed", report.Failed))
	return report, nil
}
