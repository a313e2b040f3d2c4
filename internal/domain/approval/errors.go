// Package approval defines the decision engine's error taxonomy. Every
// failure a caller can observe maps onto exactly one of these classes.
package approval

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned when the requested action is neither
	// approve nor reject.
	ErrInvalidAction = errors.New("invalid action")

	// ErrTicketNotFound is returned when no ticket exists for the given id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrAlreadyProcessed is returned by the pre-check when the ticket has
	// already left the pending state.
	ErrAlreadyProcessed = errors.New("ticket already processed")

	// ErrConflict is returned when the conditional status update matched
	// zero rows: a concurrent decision won the race.
	ErrConflict = errors.New("ticket was resolved by a concurrent decision, refresh and retry")
)

// HandlerFailedError is returned when the entity handler fails during an
// approval. Retryable is true when the compensating rollback restored the
// ticket to pending; it is false for irreversible handlers whose partial
// effects cannot be undone.
type HandlerFailedError struct {
	EntityType string
	TicketID   int64
	Retryable  bool
	Err        error
}

func (e *HandlerFailedError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("handler for %s failed on ticket %d (ticket returned to pending): %v", e.EntityType, e.TicketID, e.Err)
	}
	return fmt.Sprintf("handler for %s failed on ticket %d after irreversible changes: %v", e.EntityType, e.TicketID, e.Err)
}

func (e *HandlerFailedError) Unwrap() error { return e.Err }

// RollbackFailedError is the critical case: the handler failed and the
// compensating update also failed. The ticket's state is not guaranteed
// pending and a human operator must intervene.
type RollbackFailedError struct {
	TicketID    int64
	HandlerErr  error
	RollbackErr error
}

func (e *RollbackFailedError) Error() string {
	return fmt.Sprintf(
		"ticket %d requires manual intervention: handler failed (%v) and rollback failed (%v)",
		e.TicketID, e.HandlerErr, e.RollbackErr,
	)
}
