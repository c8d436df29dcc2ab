package schedulers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
)

// Routine is one named poll loop: a function invoked on a fixed interval.
type Routine struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error

	running atomic.Bool
}

// Scheduler fires registered routines on their intervals. A tick that
// arrives while the routine's previous cycle is still running is dropped,
// not queued; overlapping cycles would race on shared sync state.
type Scheduler struct {
	routines []*Routine
	wg       sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Register adds a routine. Must be called before Start.
func (s *Scheduler) Register(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.routines = append(s.routines, &Routine{Name: name, Interval: interval, Run: run})
}

// Start launches every registered routine: once immediately, then on each
// tick until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, routine := range s.routines {
		s.wg.Add(1)
		go func(r *Routine) {
			defer s.wg.Done()
			s.fire(ctx, r)

			ticker := time.NewTicker(r.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.fire(ctx, r)
				}
			}
		}(routine)
	}
}

// Wait blocks until all routine loops have exited after context cancellation.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) fire(ctx context.Context, r *Routine) {
	logger := log.GetLogger()
	if !r.running.CompareAndSwap(false, true) {
		logger.Warn("Previous cycle still running; dropping tick", log.String("routine", r.Name))
		return
	}
	defer r.running.Store(false)

	logger.Debug("Starting poll cycle", log.String("routine", r.Name))
	if err := r.Run(ctx); err != nil {
		// A failed cycle never carries over: the next tick starts fresh.
		logger.Error("Poll cycle failed", log.String("routine", r.Name), log.Error(err))
	}
}
