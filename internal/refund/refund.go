// Package refund cancels booked tickets.  A refund deletes the ticket
// with its booked seats and booking details, which returns the seats to
// sale, and takes the sale off the event statistics.
package refund

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/session"
)

// Refund reasons offered at the counter.
const (
	ReasonEventCancelled    = "Event Cancelled"
	ReasonIncorrectPurchase = "Incorrect Purchase"
	ReasonUnableToAttend    = "Unable to Attend"
	ReasonDuplicatePurchase = "Duplicate Purchase"
	ReasonTechnicalIssue    = "Technical Issue During Purchase"
	ReasonDissatisfaction   = "Show Quality/Dissatisfaction"
	ReasonOther             = "Other (See Description)"
)

var reasons = []string{
	ReasonEventCancelled,
	ReasonIncorrectPurchase,
	ReasonUnableToAttend,
	ReasonDuplicatePurchase,
	ReasonTechnicalIssue,
	ReasonDissatisfaction,
	ReasonOther,
}

// Reasons returns the refund reasons in display order.
func Reasons() []string { return append([]string(nil), reasons...) }

// Store deletes a ticket and everything that references it in one
// transaction, returning the deleted record.
type Store interface {
	Refund(ctx context.Context, ticketID string) (model.TicketRecord, error)
}

// Invalidator drops cached availability of a showing.
type Invalidator interface {
	Invalidate(ctx context.Context, eventID string, date time.Time, showTime string) error
}

// Request is a refund as entered by staff.
type Request struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// Validate checks the reason against the fixed list.  "Other" needs a
// description.
func (r Request) Validate() error {
	reason := strings.TrimSpace(r.Reason)
	known := false
	for _, x := range reasons {
		if x == reason {
			known = true
			break
		}
	}
	if !known {
		return &session.ValidationError{Field: "reason", Reason: "unknown refund reason"}
	}
	if reason == ReasonOther && strings.TrimSpace(r.Description) == "" {
		return &session.ValidationError{Field: "description", Reason: "required for " + ReasonOther}
	}
	return nil
}

// Service performs refunds.
type Service struct {
	store       Store
	invalidator Invalidator
	log         logrus.FieldLogger
}

// NewService returns a Service.  invalidator may be nil.
func NewService(store Store, invalidator Invalidator, log logrus.FieldLogger) *Service {
	if store == nil {
		panic("refund: nil store")
	}
	return &Service{store: store, invalidator: invalidator, log: log.WithField("component", "refund")}
}

// ErrEmptyTicketID is returned for a blank ticket id.
var ErrEmptyTicketID = errors.New("ticket id is required")

// Refund cancels ticketID for req on behalf of staff member by.  The
// store's not-found error is returned unchanged.
func (s *Service) Refund(ctx context.Context, ticketID string, req Request, by string) (model.TicketRecord, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return model.TicketRecord{}, ErrEmptyTicketID
	}
	if err := req.Validate(); err != nil {
		return model.TicketRecord{}, err
	}
	rec, err := s.store.Refund(ctx, ticketID)
	if err != nil {
		return model.TicketRecord{}, err
	}
	s.log.WithFields(logrus.Fields{
		"ticket_id":   ticketID,
		"event_id":    rec.Ticket.EventID,
		"seats":       rec.Seats,
		"amount":      rec.Ticket.Price.StringFixed(2),
		"reason":      strings.TrimSpace(req.Reason),
		"description": strings.TrimSpace(req.Description),
		"by":          by,
	}).Info("ticket refunded")

	if s.invalidator != nil {
		ev := rec.Event
		if err := s.invalidator.Invalidate(ctx, ev.ID, ev.Date, ev.Time); err != nil {
			s.log.WithError(err).WithField("event_id", ev.ID).Warn("availability cache invalidation failed")
		}
	}
	return rec, nil
}
