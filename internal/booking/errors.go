package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/session"
)

// Entities named by InsertFailedError.
const (
	EntityCustomer       = "Customer"
	EntityTicket         = "Ticket"
	EntityBookingDetails = "Booking_Details"
	EntityBookedSeats    = "Booked_Seats"
	EntityEventStats     = "Event"
)

// ValidationError is shared with the session package so callers handle
// every input error the same way.
type ValidationError = session.ValidationError

// ErrCustomerCreateFailed is returned when a freshly inserted customer
// cannot be read back inside the transaction.
var ErrCustomerCreateFailed = errors.New("failed to create customer record")

// ErrDuplicateCustomerID is returned by Tx.InsertCustomer when the
// customer id is already taken.  Generated ids are retried.
var ErrDuplicateCustomerID = errors.New("customer id already exists")

// maxCustomerIDAttempts bounds the retries of a generated customer id.
const maxCustomerIDAttempts = 5

// InsertFailedError reports a failed write of one record group.
type InsertFailedError struct {
	Entity string
	Err    error
}

func (e *InsertFailedError) Error() string {
	return fmt.Sprintf("insert %s failed: %v", e.Entity, e.Err)
}

func (e *InsertFailedError) Unwrap() error { return e.Err }

// SeatConflictError reports seats committed by another booking after
// they were selected.
type SeatConflictError struct {
	Seats []model.SeatID
}

func (e *SeatConflictError) Error() string {
	ids := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		ids[i] = string(s)
	}
	return "seats already booked: " + strings.Join(ids, ",")
}

// ConflictingSeats lets the session mark the seats as booked.
func (e *SeatConflictError) ConflictingSeats() []model.SeatID { return e.Seats }

// TransactionAbortedError wraps the cause of a rolled back commit.
// Nothing of the attempt was persisted.
type TransactionAbortedError struct {
	Err error
}

func (e *TransactionAbortedError) Error() string {
	return "booking transaction aborted: " + e.Err.Error()
}

func (e *TransactionAbortedError) Unwrap() error { return e.Err }
