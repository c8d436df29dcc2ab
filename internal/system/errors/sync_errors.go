package errors

import "fmt"

// The sync taxonomy classifies upstream API failures so the reconciliation
// engine can decide between aborting a cycle, retrying an entity on the next
// poll, or writing the entity off permanently.

// AuthError indicates the upstream rejected our credentials. Fatal for the
// current poll cycle; persisted state must not be mutated after one.
type AuthError struct {
	System string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.System, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RetryableError indicates a transient condition (timeout, 429, 5xx) that
// exhausted its bounded in-call retries. The owning entity stays out of the
// dedup set so the next cycle reconsiders it.
type RetryableError struct {
	System string
	Err    error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s transient failure: %v", e.System, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// PermanentError indicates a malformed or otherwise unprocessable response
// for a single entity. The entity is written off; the batch continues.
type PermanentError struct {
	System string
	Err    error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s permanent failure: %v", e.System, e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

func NewAuthError(system string, err error) *AuthError {
	return &AuthError{System: system, Err: err}
}

func NewRetryableError(system string, err error) *RetryableError {
	return &RetryableError{System: system, Err: err}
}

func NewPermanentError(system string, err error) *PermanentError {
	return &PermanentError{System: system, Err: err}
}
