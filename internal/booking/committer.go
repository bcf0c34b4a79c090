// Package booking turns a full reservation session into durable
// records.  The customer, ticket, booking details and booked seats are
// written in one transaction: all of them or none.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/session"
)

// Store runs fn inside one transaction.  The transaction commits when fn
// returns nil and rolls back otherwise.  Implementations must isolate
// concurrent transactions so that BookedAmong observes every booking
// committed before the transaction began or blocks it.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write group used by a commit.
type Tx interface {
	// FindCustomer looks a customer up by id or email.
	FindCustomer(ctx context.Context, customerID, email string) (model.Customer, bool, error)
	InsertCustomer(ctx context.Context, c model.Customer) error
	// BookedAmong returns which of seats are already booked for the showing.
	BookedAmong(ctx context.Context, eventID string, date time.Time, showTime string, seats []model.SeatID) ([]model.SeatID, error)
	InsertTicket(ctx context.Context, t model.Ticket) error
	InsertBookingDetails(ctx context.Context, b model.BookingDetails) error
	InsertBookedSeats(ctx context.Context, rows []model.BookedSeat) error
	// AddEventSales adjusts the event's revenue and ticket counters.
	AddEventSales(ctx context.Context, eventID string, revenue decimal.Decimal, tickets int) error
}

// Notifier is told about every committed booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, r Result) error
}

// Invalidator drops cached availability of a showing.
type Invalidator interface {
	Invalidate(ctx context.Context, eventID string, date time.Time, showTime string) error
}

// Result describes a committed booking.
type Result struct {
	BookingID       string
	TicketID        string
	CustomerID      string
	NewCustomer     bool
	Event           model.Event
	Showing         session.Showing
	Hall            string
	Seats           []model.SeatID
	Wheelchair      bool
	Subtotal        decimal.Decimal
	DiscountCode    string
	DiscountPercent int
	FinalPrice      decimal.Decimal
	ConfirmedAt     time.Time
}

// Committer persists reservation sessions.
type Committer struct {
	store       Store
	notifier    Notifier
	invalidator Invalidator
	ids         IDSource
	now         func() time.Time
	log         logrus.FieldLogger
}

// Option customises a Committer.
type Option func(*Committer)

// WithNotifier publishes committed bookings.
func WithNotifier(n Notifier) Option { return func(c *Committer) { c.notifier = n } }

// WithInvalidator drops cached availability after each commit.
func WithInvalidator(i Invalidator) Option { return func(c *Committer) { c.invalidator = i } }

// WithIDSource replaces the uuid based id generator.
func WithIDSource(ids IDSource) Option { return func(c *Committer) { c.ids = ids } }

// WithNow replaces the clock used for ConfirmedAt.
func WithNow(now func() time.Time) Option { return func(c *Committer) { c.now = now } }

// NewCommitter returns a Committer over store.
func NewCommitter(store Store, log logrus.FieldLogger, opts ...Option) *Committer {
	if store == nil {
		panic("booking: nil store")
	}
	c := &Committer{
		store: store,
		ids:   uuidIDs{},
		now:   func() time.Time { return time.Now().UTC() },
		log:   log.WithField("component", "committer"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Commit persists the session.  A session whose hold ran out fails with
// session.ErrAlreadyExpired whatever the customer info holds; otherwise
// invalid customer info fails before the session is touched.  Any
// failure inside the transaction rolls everything back and returns a
// *TransactionAbortedError; the session then stays open for another
// attempt.
func (c *Committer) Commit(ctx context.Context, sess *session.Session, info CustomerInfo) (Result, error) {
	if sess.Status() == session.StatusExpired {
		return Result{}, session.ErrAlreadyExpired
	}
	if err := info.Validate(); err != nil {
		return Result{}, err
	}
	info = info.Normalize()

	order, err := sess.BeginCommit()
	if err != nil {
		return Result{}, err
	}
	res, err := c.persist(ctx, order, info)
	sess.FinishCommit(err)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"session_id": order.SessionID,
			"event_id":   order.Showing.EventID,
			"seats":      order.Seats,
		}).Error("booking commit failed")
		return Result{}, err
	}

	c.log.WithFields(logrus.Fields{
		"booking_id":  res.BookingID,
		"ticket_id":   res.TicketID,
		"customer_id": res.CustomerID,
		"event_id":    res.Showing.EventID,
		"seats":       res.Seats,
		"total":       res.FinalPrice.StringFixed(2),
	}).Info("booking committed")
	c.afterCommit(ctx, res)
	return res, nil
}

func (c *Committer) persist(ctx context.Context, order session.Order, info CustomerInfo) (Result, error) {
	sh := order.Showing
	ticketID := c.ids.TicketID()
	bookingID := c.ids.BookingID()

	var res Result
	err := c.store.WithTx(ctx, func(tx Tx) error {
		customerID, created, err := c.resolveCustomer(ctx, tx, info)
		if err != nil {
			return err
		}

		taken, err := tx.BookedAmong(ctx, sh.EventID, sh.Date, sh.Time, order.Seats)
		if err != nil {
			return fmt.Errorf("re-check seats: %w", err)
		}
		if len(taken) > 0 {
			return &SeatConflictError{Seats: taken}
		}

		ticket := model.Ticket{
			ID:                  ticketID,
			Hall:                order.Hall,
			Type:                model.TicketTypeStandard,
			EligibleForDiscount: order.Discount.Percentage > 0,
			Wheelchair:          order.Wheelchair,
			Price:               order.Final,
			PriorityStatus:      model.PriorityLow,
			CustomerID:          customerID,
			EventID:             sh.EventID,
			SeatID:              order.Seats[0],
		}
		if err := tx.InsertTicket(ctx, ticket); err != nil {
			return &InsertFailedError{Entity: EntityTicket, Err: err}
		}

		details := model.BookingDetails{
			ID:         bookingID,
			Status:     true,
			CustomerID: customerID,
			TicketID:   ticketID,
			EventID:    sh.EventID,
		}
		if err := tx.InsertBookingDetails(ctx, details); err != nil {
			return &InsertFailedError{Entity: EntityBookingDetails, Err: err}
		}

		rows := make([]model.BookedSeat, len(order.Seats))
		for i, id := range order.Seats {
			rows[i] = model.BookedSeat{SeatID: id, TicketID: ticketID}
		}
		if err := tx.InsertBookedSeats(ctx, rows); err != nil {
			return &InsertFailedError{Entity: EntityBookedSeats, Err: err}
		}

		if err := tx.AddEventSales(ctx, sh.EventID, order.Final, len(order.Seats)); err != nil {
			return &InsertFailedError{Entity: EntityEventStats, Err: err}
		}

		res = Result{
			BookingID:       bookingID,
			TicketID:        ticketID,
			CustomerID:      customerID,
			NewCustomer:     created,
			Event:           order.Event,
			Showing:         sh,
			Hall:            order.Hall,
			Seats:           order.Seats,
			Wheelchair:      order.Wheelchair,
			Subtotal:        order.Subtotal,
			DiscountCode:    order.Discount.Code,
			DiscountPercent: order.Discount.Percentage,
			FinalPrice:      order.Final,
		}
		return nil
	})
	if err != nil {
		return Result{}, &TransactionAbortedError{Err: err}
	}
	res.ConfirmedAt = c.now()
	return res, nil
}

// resolveCustomer reuses a customer matching the id or email, or
// creates one and reads it back.
func (c *Committer) resolveCustomer(ctx context.Context, tx Tx, info CustomerInfo) (string, bool, error) {
	existing, found, err := tx.FindCustomer(ctx, info.CustomerID, info.Email)
	if err != nil {
		return "", false, fmt.Errorf("customer lookup: %w", err)
	}
	if found {
		return existing.ID, false, nil
	}

	id := info.CustomerID
	generated := id == ""
	for attempt := 1; ; attempt++ {
		if generated {
			id = c.ids.CustomerID()
		}
		err := tx.InsertCustomer(ctx, info.record(id))
		if err == nil {
			break
		}
		if !generated || !errors.Is(err, ErrDuplicateCustomerID) || attempt == maxCustomerIDAttempts {
			return "", false, &InsertFailedError{Entity: EntityCustomer, Err: err}
		}
		c.log.WithField("customer_id", id).Debug("customer id taken; generating another")
	}
	if _, found, err = tx.FindCustomer(ctx, id, info.Email); err != nil {
		return "", false, fmt.Errorf("customer lookup: %w", err)
	}
	if !found {
		return "", false, ErrCustomerCreateFailed
	}
	return id, true, nil
}

// afterCommit runs the best-effort side effects of a durable booking.
func (c *Committer) afterCommit(ctx context.Context, res Result) {
	if c.invalidator != nil {
		sh := res.Showing
		if err := c.invalidator.Invalidate(ctx, sh.EventID, sh.Date, sh.Time); err != nil {
			c.log.WithError(err).WithField("event_id", sh.EventID).Warn("availability cache invalidation failed")
		}
	}
	if c.notifier != nil {
		if err := c.notifier.BookingConfirmed(ctx, res); err != nil {
			c.log.WithError(err).WithField("booking_id", res.BookingID).Warn("booking.confirmed publish failed")
		}
	}
}
