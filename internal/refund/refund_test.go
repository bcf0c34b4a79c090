package refund_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/clock"
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/memstore"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/pricing"
	"github.com/iliyamo/venue-box-office/internal/refund"
	"github.com/iliyamo/venue-box-office/internal/repository"
	"github.com/iliyamo/venue-box-office/internal/session"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestRequestValidate(t *testing.T) {
	cases := []struct {
		req refund.Request
		ok  bool
	}{
		{refund.Request{Reason: refund.ReasonEventCancelled}, true},
		{refund.Request{Reason: " Unable to Attend "}, true},
		{refund.Request{Reason: refund.ReasonOther, Description: "wrong date"}, true},
		{refund.Request{Reason: refund.ReasonOther, Description: "   "}, false},
		{refund.Request{Reason: "Changed my mind"}, false},
		{refund.Request{}, false},
	}
	for _, tc := range cases {
		err := tc.req.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("%+v: err = %v", tc.req, err)
		}
		var ve *session.ValidationError
		if err != nil && !errors.As(err, &ve) {
			t.Errorf("%+v: not a validation error: %v", tc.req, err)
		}
	}
	if n := len(refund.Reasons()); n != 7 {
		t.Fatalf("reasons = %d", n)
	}
}

type invalidations []string

func (i *invalidations) Invalidate(_ context.Context, eventID string, _ time.Time, showTime string) error {
	*i = append(*i, eventID+"@"+showTime)
	return nil
}

func TestRefundReleasesSeats(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := model.Event{ID: "EVT002", Name: "Event B", Type: "Conference", Price: decimal.RequireFromString("75.50"), HallType: model.SmallHall, Date: day, Time: "14:00"}
	store := memstore.New(ev)
	inv := inventory.New(store, quietLog())

	snap, err := inv.Snapshot(context.Background(), ev, day, ev.Time)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := session.New(session.Config{Event: ev, Showing: session.Showing{EventID: ev.ID, Date: day, Time: ev.Time}, Quantity: 2},
		snap, pricing.NewFlatEventPrice(ev.Price, snap.Layout), nil,
		session.WithClock(clock.NewFake(day)), session.WithLogger(quietLog()))
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []model.SeatID{"F5", "F6"} {
		if _, err := sess.ToggleSeat(id); err != nil {
			t.Fatal(err)
		}
	}
	res, err := booking.NewCommitter(store, quietLog()).Commit(context.Background(), sess,
		booking.CustomerInfo{Name: "Kim", Email: "kim@example.com", Phone: "07700 900123"})
	if err != nil {
		t.Fatal(err)
	}

	var inval invalidations
	svc := refund.NewService(store, &inval, quietLog())
	rec, err := svc.Refund(context.Background(), res.TicketID, refund.Request{Reason: refund.ReasonDuplicatePurchase}, "3")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Seats) != 2 || !rec.Ticket.Price.Equal(decimal.RequireFromString("151")) {
		t.Fatalf("record = %+v", rec)
	}
	if n := len(store.BookedSeatRows()) + len(store.Tickets()) + len(store.BookingDetails()); n != 0 {
		t.Fatalf("%d rows left after refund", n)
	}
	got, _ := store.GetByID(context.Background(), ev.ID)
	if got.TicketNumbers != 0 || !got.TicketRevenue.IsZero() {
		t.Fatalf("stats = %d / %s", got.TicketNumbers, got.TicketRevenue)
	}
	if len(inval) != 1 || inval[0] != "EVT002@14:00" {
		t.Fatalf("invalidations = %v", inval)
	}

	if _, err := svc.Refund(context.Background(), res.TicketID, refund.Request{Reason: refund.ReasonDuplicatePurchase}, "3"); !errors.Is(err, repository.ErrTicketNotFound) {
		t.Fatalf("second refund err = %v", err)
	}
}

func TestRefundRejectsBeforeStore(t *testing.T) {
	svc := refund.NewService(memstore.New(), nil, quietLog())
	if _, err := svc.Refund(context.Background(), " ", refund.Request{Reason: refund.ReasonOther}, "1"); !errors.Is(err, refund.ErrEmptyTicketID) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Refund(context.Background(), "TKT-1", refund.Request{Reason: "nope"}, "1"); err == nil {
		t.Fatal("expected validation error")
	}
}
