package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// ErrInventoryUnavailable wraps a failed booked-seat lookup.  Snapshots
// built after such a failure carry it as their Warning.
var ErrInventoryUnavailable = errors.New("seat availability unavailable")

// BookedSeatLookup returns the seats already claimed by committed
// bookings for one showing.
type BookedSeatLookup interface {
	BookedSeats(ctx context.Context, eventID string, date time.Time, showTime string) ([]model.SeatID, error)
}

// fallbackBooked is shown as booked when the lookup fails, so the seat
// map stays usable offline.
var fallbackBooked = []model.SeatID{"A5", "C8", "F4", "L1", "M3", "N2", "CC4", "P6", "A1", "AA34", "BB25", "CC7"}

// Snapshot is the availability of one showing at one moment.
type Snapshot struct {
	Layout   *Layout
	Booked   map[model.SeatID]bool
	Degraded bool  // true when Booked is the built-in fallback set
	Warning  error // non-nil when Degraded
}

// IsBooked reports whether a seat is taken in this snapshot.
func (s Snapshot) IsBooked(id model.SeatID) bool { return s.Booked[id] }

// Available returns the seats that are not booked, in layout order.
func (s Snapshot) Available() []model.SeatID {
	var out []model.SeatID
	for _, d := range s.Layout.seats {
		if !s.Booked[d.ID] {
			out = append(out, d.ID)
		}
	}
	return out
}

// Inventory derives availability from a layout and a booked-seat lookup.
type Inventory struct {
	lookup BookedSeatLookup
	log    logrus.FieldLogger
}

// New returns an Inventory backed by lookup.
func New(lookup BookedSeatLookup, log logrus.FieldLogger) *Inventory {
	if lookup == nil {
		panic("inventory: nil lookup")
	}
	return &Inventory{lookup: lookup, log: log.WithField("component", "inventory")}
}

// BookedSeats proxies the lookup and returns the result as a set.
func (inv *Inventory) BookedSeats(ctx context.Context, eventID string, date time.Time, showTime string) (map[model.SeatID]bool, error) {
	ids, err := inv.lookup.BookedSeats(ctx, eventID, date, showTime)
	if err != nil {
		return nil, err
	}
	set := make(map[model.SeatID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Snapshot builds the availability of an event at a date and time.  A
// failing lookup does not fail the snapshot: the fallback seat set is
// used instead and the returned Snapshot is marked Degraded.  Only an
// unknown hall type is an error.
func (inv *Inventory) Snapshot(ctx context.Context, ev model.Event, date time.Time, showTime string) (Snapshot, error) {
	layout, err := LayoutFor(ev.HallType, ev.Type)
	if err != nil {
		return Snapshot{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	booked, err := inv.BookedSeats(ctx, ev.ID, date, showTime)
	if err == nil {
		return Snapshot{Layout: layout, Booked: booked}, nil
	}

	inv.log.WithFields(logrus.Fields{
		"event_id": ev.ID,
		"date":     date.Format("2006-01-02"),
		"time":     showTime,
	}).WithError(err).Warn("booked seat lookup failed; using fallback seats")

	booked = make(map[model.SeatID]bool, len(fallbackBooked))
	for _, id := range fallbackBooked {
		if layout.Contains(id) {
			booked[id] = true
		}
	}
	return Snapshot{
		Layout:   layout,
		Booked:   booked,
		Degraded: true,
		Warning:  fmt.Errorf("%w: %v", ErrInventoryUnavailable, err),
	}, nil
}
