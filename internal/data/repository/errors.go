package repository

import "errors"

// Sentinel errors for control flow in the usecase layer. Wrapped with
// fmt.Errorf("...: %w") where the call site adds context.
var (
	ErrTripNotFound    = errors.New("trip not found")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRewardNotFound  = errors.New("reward not found")

	// ErrSeatConflict: the conditional occupied write lost the race. Never
	// retried automatically; the caller re-offers the layout.
	ErrSeatConflict = errors.New("seat conflict")

	// ErrDuplicateSeat: the partial unique index on
	// (trip_id, user_id, seat_number) where status <> 'cancelled' rejected an
	// insert. This is the durable duplicate-submission backstop behind the
	// in-memory idempotency guard.
	ErrDuplicateSeat = errors.New("duplicate seat booking")
)
