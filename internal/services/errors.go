package services

import "errors"

// Typed precondition failures surfaced directly to callers. None are retried
// by the core itself. Currency mismatches surface money.ErrCurrencyMismatch
// and lost optimistic-lock races surface repos.ErrConcurrentModification.
var (
	// ErrInvalidTransition indicates the target status is not adjacent to the
	// job's current status in the workflow graph.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrTerminalState indicates the job is completed or cancelled and admits
	// no further transitions.
	ErrTerminalState = errors.New("job is in a terminal state")
	// ErrInvalidAmount indicates a non-positive monetary amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrQuoteExpired indicates the quote response deadline has passed.
	ErrQuoteExpired = errors.New("quote response deadline has passed")
	// ErrMissingReference indicates a payout was processed without an
	// external reference.
	ErrMissingReference = errors.New("payout reference is required")
	// ErrBelowThreshold indicates the net amount is under the configured
	// minimum payout threshold.
	ErrBelowThreshold = errors.New("net amount below minimum payout threshold")
	// ErrAlreadyDisputed indicates the payout record carries an unresolved
	// dispute flag.
	ErrAlreadyDisputed = errors.New("payout record is disputed")
	// ErrInvalidState indicates the record or job is not in a state that
	// permits the requested operation.
	ErrInvalidState = errors.New("operation not allowed in current state")
)
