// Package memstore keeps every box-office table in process memory.  It
// backs APP_STORAGE=memory and the package tests of the layers above
// storage.  Transactions are serialised by one mutex and staged writes
// only become visible when the transaction function succeeds.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/repository"
)

// Store is an in-memory implementation of the storage interfaces.
type Store struct {
	mu        sync.Mutex
	events    map[string]model.Event
	customers []model.Customer
	tickets   []model.Ticket
	details   []model.BookingDetails
	booked    []model.BookedSeat
	discounts map[string]model.Discount
	users     map[string]model.User
	friends   map[int]model.Friend
}

// New returns a store holding events.  When none are given the
// built-in programme for today is loaded.
func New(events ...model.Event) *Store {
	if len(events) == 0 {
		events = model.DefaultEvents(time.Now().UTC())
	}
	s := &Store{
		events:    make(map[string]model.Event, len(events)),
		discounts: make(map[string]model.Discount),
		users:     make(map[string]model.User),
		friends:   make(map[int]model.Friend),
	}
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
	return s
}

// AddUser stores a staff account, replacing one with the same username.
func (s *Store) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = uint64(len(s.users) + 1)
	}
	s.users[u.Username] = u
}

// AddFriend stores a Friends of Lancaster member.  A zero ID is
// assigned the next free number.
func (s *Store) AddFriend(f model.Friend) model.Friend {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == 0 {
		for id := range s.friends {
			if id > f.ID {
				f.ID = id
			}
		}
		f.ID++
	}
	s.friends[f.ID] = f
	return f
}

// ListFriends returns every member ordered by name.
func (s *Store) ListFriends(_ context.Context) ([]model.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Friend, 0, len(s.friends))
	for _, f := range s.friends {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetFriend returns the member with id.
func (s *Store) GetFriend(_ context.Context, id int) (model.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.friends[id]
	if !ok {
		return model.Friend{}, repository.ErrFriendNotFound
	}
	return f, nil
}

// GetByUsername returns the staff account named username.
func (s *Store) GetByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// List returns every event ordered by date, time and id.
func (s *Store) List(_ context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return out, nil
}

// GetByID returns one event.
func (s *Store) GetByID(_ context.Context, id string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return ev, nil
}

// BookedSeats returns the seats booked for the event at date and time.
func (s *Store) BookedSeats(_ context.Context, eventID string, date time.Time, showTime string) ([]model.SeatID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookedLocked(s.booked, s.tickets, eventID, date, showTime), nil
}

func (s *Store) bookedLocked(rows []model.BookedSeat, tickets []model.Ticket, eventID string, date time.Time, showTime string) []model.SeatID {
	ev, ok := s.events[eventID]
	if !ok || !sameDay(ev.Date, date) || ev.Time != showTime {
		return nil
	}
	ticketEvent := make(map[string]string, len(tickets))
	for _, t := range tickets {
		ticketEvent[t.ID] = t.EventID
	}
	var out []model.SeatID
	for _, r := range rows {
		if ticketEvent[r.TicketID] == eventID {
			out = append(out, r.SeatID)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Insert stores a discount code.
func (s *Store) Insert(_ context.Context, d model.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discounts[d.Code]; ok {
		return discount.ErrCodeExists
	}
	s.discounts[d.Code] = d
	return nil
}

// GetByCode returns the discount with the exact code.
func (s *Store) GetByCode(_ context.Context, code string) (model.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.discounts[code]
	if !ok {
		return model.Discount{}, discount.ErrNotFound
	}
	return d, nil
}

// WithTx runs fn with exclusive access to the store.  Writes made
// through the Tx are applied only when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{s: s, sales: make(map[string]sale)}
	if err := fn(tx); err != nil {
		return err
	}
	s.customers = append(s.customers, tx.customers...)
	s.tickets = append(s.tickets, tx.tickets...)
	s.details = append(s.details, tx.details...)
	s.booked = append(s.booked, tx.booked...)
	for id, sl := range tx.sales {
		ev := s.events[id]
		ev.TicketRevenue = ev.TicketRevenue.Add(sl.revenue)
		ev.TicketNumbers += sl.tickets
		s.events[id] = ev
	}
	return nil
}

type sale struct {
	revenue decimal.Decimal
	tickets int
}

// memTx stages the writes of one transaction.  The store mutex is held
// for its whole life.
type memTx struct {
	s         *Store
	customers []model.Customer
	tickets   []model.Ticket
	details   []model.BookingDetails
	booked    []model.BookedSeat
	sales     map[string]sale
}

func (t *memTx) FindCustomer(ctx context.Context, customerID, email string) (model.Customer, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Customer{}, false, err
	}
	for _, group := range [][]model.Customer{t.s.customers, t.customers} {
		for _, c := range group {
			if (customerID != "" && c.ID == customerID) || (email != "" && strings.EqualFold(c.Email, email)) {
				return c, true, nil
			}
		}
	}
	return model.Customer{}, false, nil
}

func (t *memTx) InsertCustomer(_ context.Context, c model.Customer) error {
	for _, group := range [][]model.Customer{t.s.customers, t.customers} {
		for _, existing := range group {
			if existing.ID == c.ID {
				return fmt.Errorf("%w: %s", booking.ErrDuplicateCustomerID, c.ID)
			}
		}
	}
	t.customers = append(t.customers, c)
	return nil
}

func (t *memTx) BookedAmong(_ context.Context, eventID string, date time.Time, showTime string, seats []model.SeatID) ([]model.SeatID, error) {
	rows := append(append([]model.BookedSeat(nil), t.s.booked...), t.booked...)
	tickets := append(append([]model.Ticket(nil), t.s.tickets...), t.tickets...)
	taken := make(map[model.SeatID]bool)
	for _, id := range t.s.bookedLocked(rows, tickets, eventID, date, showTime) {
		taken[id] = true
	}
	var out []model.SeatID
	for _, id := range seats {
		if taken[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (t *memTx) InsertTicket(_ context.Context, tk model.Ticket) error {
	t.tickets = append(t.tickets, tk)
	return nil
}

func (t *memTx) InsertBookingDetails(_ context.Context, b model.BookingDetails) error {
	t.details = append(t.details, b)
	return nil
}

func (t *memTx) InsertBookedSeats(_ context.Context, rows []model.BookedSeat) error {
	t.booked = append(t.booked, rows...)
	return nil
}

func (t *memTx) AddEventSales(_ context.Context, eventID string, revenue decimal.Decimal, tickets int) error {
	if _, ok := t.s.events[eventID]; !ok {
		return repository.ErrEventNotFound
	}
	sl := t.sales[eventID]
	sl.revenue = sl.revenue.Add(revenue)
	sl.tickets += tickets
	t.sales[eventID] = sl
	return nil
}

// GetRecord returns a ticket with its event, customer and seats.
func (s *Store) GetRecord(_ context.Context, ticketID string) (model.TicketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(ticketID)
}

func (s *Store) recordLocked(ticketID string) (model.TicketRecord, error) {
	var rec model.TicketRecord
	found := false
	for _, t := range s.tickets {
		if t.ID == ticketID {
			rec.Ticket, found = t, true
			break
		}
	}
	if !found {
		return model.TicketRecord{}, repository.ErrTicketNotFound
	}
	rec.Event = s.events[rec.Ticket.EventID]
	for _, c := range s.customers {
		if c.ID == rec.Ticket.CustomerID {
			rec.Customer = c
			break
		}
	}
	for _, r := range s.booked {
		if r.TicketID == ticketID {
			rec.Seats = append(rec.Seats, r.SeatID)
		}
	}
	return rec, nil
}

// Refund deletes a ticket with its booked seats and booking details and
// takes the sale off the event statistics.  The deleted record is
// returned.
func (s *Store) Refund(_ context.Context, ticketID string) (model.TicketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recordLocked(ticketID)
	if err != nil {
		return model.TicketRecord{}, err
	}

	booked := s.booked[:0]
	for _, r := range s.booked {
		if r.TicketID != ticketID {
			booked = append(booked, r)
		}
	}
	s.booked = booked
	details := s.details[:0]
	for _, d := range s.details {
		if d.TicketID != ticketID {
			details = append(details, d)
		}
	}
	s.details = details
	tickets := s.tickets[:0]
	for _, t := range s.tickets {
		if t.ID != ticketID {
			tickets = append(tickets, t)
		}
	}
	s.tickets = tickets

	if ev, ok := s.events[rec.Ticket.EventID]; ok {
		ev.TicketRevenue = ev.TicketRevenue.Sub(rec.Ticket.Price)
		ev.TicketNumbers -= len(rec.Seats)
		s.events[ev.ID] = ev
	}
	return rec, nil
}

// Customers returns a copy of the Customer table.
func (s *Store) Customers() []model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Customer(nil), s.customers...)
}

// Tickets returns a copy of the Ticket table.
func (s *Store) Tickets() []model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Ticket(nil), s.tickets...)
}

// BookingDetails returns a copy of the Booking_Details table.
func (s *Store) BookingDetails() []model.BookingDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.BookingDetails(nil), s.details...)
}

// BookedSeatRows returns a copy of the Booked_Seats table.
func (s *Store) BookedSeatRows() []model.BookedSeat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.BookedSeat(nil), s.booked...)
}
