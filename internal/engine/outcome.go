package engine

import "fmt"

// Status classifies the result of one reconciliation attempt for one entity.
type Status int

const (
	StatusSkipped Status = iota
	StatusApplied
	StatusFailedRetryable
	StatusFailedPermanent
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusApplied:
		return "applied"
	case StatusFailedRetryable:
		return "failed_retryable"
	case StatusFailedPermanent:
		return "failed_permanent"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the per-entity result of a reconciliation attempt. Record
// decides whether the entity's dedup keys enter the persisted set: applied
// entities and permanently failed ones do, retryable failures and most
// skips do not, so the entity is reconsidered while it stays inside the
// lookback window.
type Outcome struct {
	Status Status
	Reason string
	Err    error
	Record bool
}

// Skipped marks an entity passed over without side effects; it stays out of
// the dedup set and may become eligible on a later poll.
func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// SkippedForever marks an entity that can never become eligible (e.g. a
// contact with no identity at all); it is recorded so later polls stop
// reconsidering it.
func SkippedForever(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason, Record: true}
}

// Applied marks a successful side effect.
func Applied() Outcome {
	return Outcome{Status: StatusApplied, Record: true}
}

// FailedRetryable marks a transient failure; the entity is retried on the
// next cycle.
func FailedRetryable(err error) Outcome {
	return Outcome{Status: StatusFailedRetryable, Err: err}
}

// FailedPermanent marks an unprocessable entity; it is recorded so the
// batch never trips over it again.
func FailedPermanent(err error) Outcome {
	return Outcome{Status: StatusFailedPermanent, Err: err, Record: true}
}
