package session

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/pricing"
)

// SeatStatus is how a seat is shown on the seat map.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
	SeatBlocked   SeatStatus = "blocked"
	SeatSelected  SeatStatus = "selected"
)

// SeatState is one entry of the seat map.
type SeatState struct {
	model.SeatDescriptor
	Price  decimal.Decimal
	Status SeatStatus
}

// State is a point-in-time copy of a session for presentation.
type State struct {
	ID               string
	Owner            string
	Status           Status
	Event            model.Event
	Showing          Showing
	Quantity         int
	Wheelchair       bool
	Checkout         bool
	RemainingSeconds int
	Selected         []model.SeatID
	Blocked          map[model.SeatID]model.SeatID // companion -> wheelchair seat
	Subtotal         decimal.Decimal
	Discount         Discount
	Final            decimal.Decimal // rounded to two places
	Degraded         bool
	Warning          string
	Seats            []SeatState
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := pricing.Subtotal(s.prices, s.selected)
	st := State{
		ID:               s.id,
		Owner:            s.owner,
		Status:           s.statusLocked(),
		Event:            s.event,
		Showing:          s.showing,
		Quantity:         s.quantity,
		Wheelchair:       s.wheelchair,
		Checkout:         s.checkout,
		RemainingSeconds: s.remaining,
		Selected:         append([]model.SeatID(nil), s.selected...),
		Blocked:          make(map[model.SeatID]model.SeatID, len(s.blockedBy)),
		Subtotal:         subtotal,
		Discount:         s.discount,
		Final:            discount.Round(discount.Apply(subtotal, s.discount.Percentage)),
		Degraded:         s.snap.Degraded,
	}
	if s.snap.Warning != nil {
		st.Warning = s.snap.Warning.Error()
	}
	for c, w := range s.blockedBy {
		st.Blocked[c] = w
	}

	for _, d := range s.snap.Layout.Seats() {
		ss := SeatState{SeatDescriptor: d, Price: s.prices.PriceOf(d.ID), Status: SeatAvailable}
		switch {
		case s.snap.IsBooked(d.ID):
			ss.Status = SeatBooked
		case s.isSelectedLocked(d.ID):
			ss.Status = SeatSelected
		default:
			if _, ok := s.blockedBy[d.ID]; ok {
				ss.Status = SeatBlocked
			}
		}
		st.Seats = append(st.Seats, ss)
	}
	return st
}

// Seat returns the map entry of one seat.
func (st State) Seat(id model.SeatID) (SeatState, bool) {
	for _, ss := range st.Seats {
		if ss.ID == id {
			return ss, true
		}
	}
	return SeatState{}, false
}
