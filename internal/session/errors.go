package session

import (
	"errors"
	"fmt"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// Selection-rule errors.  The selection is left unchanged.
var (
	ErrSelectionLimitExceeded   = errors.New("selection limit exceeded")
	ErrNoCompanionSeatAvailable = errors.New("no companion seat available")
	ErrUnknownSeat              = errors.New("seat does not exist in this hall")
	ErrSeatUnavailable          = errors.New("seat already booked")
	ErrSeatBlocked              = errors.New("seat blocked as wheelchair companion")
	ErrSelectionLocked          = errors.New("seat selection locked during checkout")
)

// Lifecycle errors.
var (
	ErrAlreadyExpired   = errors.New("seat hold expired")
	ErrClosed           = errors.New("session closed")
	ErrCommitInProgress = errors.New("commit in progress")
	ErrSessionNotFound  = errors.New("session not found")
)

// ValidationError reports bad caller input.  No state is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// conflict is implemented by commit errors that name seats booked by a
// concurrent commit.
type conflict interface {
	ConflictingSeats() []model.SeatID
}
