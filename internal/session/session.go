// Package session implements the reservation session: an in-memory,
// time-boxed hold on a set of seats for one customer interaction.
//
// A Session is safe for concurrent use.  Tick and expiry callbacks run on
// the timer goroutine outside the session lock and must not call back
// into the Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/clock"
	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/pricing"
)

// Defaults applied when Config leaves them zero.
const (
	DefaultHold        = 600 * time.Second
	DefaultMaxQuantity = 12
)

// DiscountResolver looks up discount codes.  *discount.Resolver
// satisfies it.
type DiscountResolver interface {
	Resolve(ctx context.Context, code string) (model.Discount, error)
}

// Showing identifies one performance of an event.
type Showing struct {
	EventID string
	Date    time.Time
	Time    string
}

// Config describes a new session.
type Config struct {
	Owner       string // staff user running the sale
	Event       model.Event
	Showing     Showing
	Quantity    int
	MaxQuantity int
	Wheelchair  bool
	Hold        time.Duration
}

// Option customises a Session.
type Option func(*Session)

// WithClock sets the clock driving the hold timer.
func WithClock(c clock.Clock) Option { return func(s *Session) { s.clock = c } }

// WithID fixes the session handle instead of generating one.
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option { return func(s *Session) { s.log = l } }

// WithTickHandler registers a callback receiving the remaining seconds
// after every tick of the hold timer.
func WithTickHandler(fn func(remaining int)) Option { return func(s *Session) { s.onTick = fn } }

// WithExpiryHandler registers a callback run once when the hold expires.
func WithExpiryHandler(fn func()) Option { return func(s *Session) { s.onExpire = fn } }

// Discount is the discount applied at checkout.
type Discount struct {
	Code       string
	Percentage int
	Reason     string
}

// DiscountOutcome is the result of ApplyDiscountCode.  Warning is set
// when the code could not be used; the session then carries 0%.
type DiscountOutcome struct {
	Discount
	Warning error
}

// ToggleResult describes the effect of ToggleSeat.  Companion is the
// seat that became blocked (on select) or released (on deselect).
type ToggleResult struct {
	Seat      model.SeatID
	Selected  bool
	Companion model.SeatID
}

// Order is the frozen content of a session handed to the committer.
type Order struct {
	SessionID  string
	Event      model.Event
	Showing    Showing
	Hall       string
	Seats      []model.SeatID
	Wheelchair bool
	Subtotal   decimal.Decimal
	Discount   Discount
	Final      decimal.Decimal // rounded to two places
}

// Session is one in-progress booking attempt.
type Session struct {
	mu       sync.Mutex
	id       string
	owner    string
	clock    clock.Clock
	log      logrus.FieldLogger
	resolver DiscountResolver
	onTick   func(int)
	onExpire func()

	event       model.Event
	showing     Showing
	snap        inventory.Snapshot
	prices      pricing.Model
	quantity    int
	maxQuantity int
	wheelchair  bool

	selected   []model.SeatID
	companions map[model.SeatID]model.SeatID // wheelchair seat -> blocked companion
	blockedBy  map[model.SeatID]model.SeatID // companion -> wheelchair seat

	discount   Discount
	remaining  int
	checkout   bool
	committing bool
	final      Status // zero while open
	createdAt  time.Time
	closedAt   time.Time

	stopTimer func()
	timerGen  uint64
}

// New creates a session and starts its hold timer.
func New(cfg Config, snap inventory.Snapshot, prices pricing.Model, resolver DiscountResolver, opts ...Option) (*Session, error) {
	if snap.Layout == nil {
		return nil, errors.New("session: snapshot has no layout")
	}
	if prices == nil {
		return nil, errors.New("session: nil pricing model")
	}
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = DefaultMaxQuantity
	}
	if cfg.Hold <= 0 {
		cfg.Hold = DefaultHold
	}
	if err := validQuantity(cfg.Quantity, cfg.MaxQuantity); err != nil {
		return nil, err
	}
	s := &Session{
		owner:       cfg.Owner,
		clock:       clock.Real{},
		resolver:    resolver,
		event:       cfg.Event,
		showing:     cfg.Showing,
		snap:        snap,
		prices:      prices,
		quantity:    cfg.Quantity,
		maxQuantity: cfg.MaxQuantity,
		wheelchair:  cfg.Wheelchair,
		companions:  make(map[model.SeatID]model.SeatID),
		blockedBy:   make(map[model.SeatID]model.SeatID),
		remaining:   int(cfg.Hold / time.Second),
	}
	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "session", "session_id": s.id})
	s.createdAt = s.clock.Now()

	s.mu.Lock()
	s.startTimerLocked()
	s.mu.Unlock()
	return s, nil
}

func validQuantity(q, max int) error {
	if q < 1 || q > max {
		return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be between 1 and %d", max)}
	}
	return nil
}

// ID returns the session handle.
func (s *Session) ID() string { return s.id }

// Owner returns the staff user that opened the session.
func (s *Session) Owner() string { return s.owner }

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	switch {
	case s.final != 0:
		return s.final
	case s.committing:
		return StatusCommitting
	case len(s.selected) == 0:
		return StatusEmpty
	case len(s.selected) < s.quantity:
		return StatusSelecting
	}
	return StatusFull
}

// editableLocked rejects edits once the session left the open states.
func (s *Session) editableLocked() error {
	switch s.final {
	case StatusExpired:
		return ErrAlreadyExpired
	case StatusCommitted, StatusAborted:
		return ErrClosed
	}
	if s.committing {
		return ErrCommitInProgress
	}
	return nil
}

// ToggleSeat selects an unselected seat or releases a selected one.
func (s *Session) ToggleSeat(id model.SeatID) (ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return ToggleResult{}, err
	}
	if s.checkout {
		return ToggleResult{}, ErrSelectionLocked
	}
	if s.isSelectedLocked(id) {
		return s.deselectLocked(id), nil
	}

	desc, ok := s.snap.Layout.Seat(id)
	if !ok {
		return ToggleResult{}, ErrUnknownSeat
	}
	if len(s.selected) >= s.quantity {
		return ToggleResult{}, ErrSelectionLimitExceeded
	}
	if s.snap.IsBooked(id) {
		return ToggleResult{}, ErrSeatUnavailable
	}
	if _, blocked := s.blockedBy[id]; blocked {
		return ToggleResult{}, ErrSeatBlocked
	}

	res := ToggleResult{Seat: id, Selected: true}
	if s.wheelchair && desc.WheelchairAccessible {
		companion, ok := s.findAdjacentSeatLocked(desc)
		if !ok {
			return ToggleResult{}, ErrNoCompanionSeatAvailable
		}
		s.companions[id] = companion
		s.blockedBy[companion] = id
		res.Companion = companion
	}
	s.selected = append(s.selected, id)
	return res, nil
}

func (s *Session) deselectLocked(id model.SeatID) ToggleResult {
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			break
		}
	}
	res := ToggleResult{Seat: id}
	if c, ok := s.companions[id]; ok {
		delete(s.companions, id)
		delete(s.blockedBy, c)
		res.Companion = c
	}
	return res
}

// findAdjacentSeatLocked picks the companion for a wheelchair seat: the
// next seat in the row, otherwise the previous one.  A candidate must
// exist and be neither booked, selected nor blocked.
func (s *Session) findAdjacentSeatLocked(d model.SeatDescriptor) (model.SeatID, bool) {
	for _, delta := range []int{1, -1} {
		cand := model.NewSeatID(d.Row, d.Number+delta)
		if !s.snap.Layout.Contains(cand) || s.snap.IsBooked(cand) || s.isSelectedLocked(cand) {
			continue
		}
		if _, blocked := s.blockedBy[cand]; blocked {
			continue
		}
		return cand, true
	}
	return "", false
}

func (s *Session) isSelectedLocked(id model.SeatID) bool {
	for _, sel := range s.selected {
		if sel == id {
			return true
		}
	}
	return false
}

// clearSelectionLocked drops every selected seat and companion block.
// The applied discount belongs to checkout and is left alone.
func (s *Session) clearSelectionLocked() {
	s.selected = nil
	clear(s.companions)
	clear(s.blockedBy)
	s.checkout = false
}

// Reselect switches the session to another showing.  The selection is
// cleared; the discount is kept.
func (s *Session) Reselect(ev model.Event, showing Showing, snap inventory.Snapshot, prices pricing.Model) error {
	if snap.Layout == nil || prices == nil {
		return errors.New("session: reselect needs a layout and pricing model")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.clearSelectionLocked()
	s.event, s.showing, s.snap, s.prices = ev, showing, snap, prices
	return nil
}

// SetQuantity changes the ticket quantity and clears the selection.
func (s *Session) SetQuantity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if err := validQuantity(n, s.maxQuantity); err != nil {
		return err
	}
	s.quantity = n
	s.clearSelectionLocked()
	return nil
}

// SetWheelchair toggles the wheelchair request and clears the selection.
func (s *Session) SetWheelchair(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.wheelchair = on
	s.clearSelectionLocked()
	return nil
}

// ApplyDiscountCode resolves a code and applies it.  An empty code removes
// the discount.  A code that cannot be resolved is not an error: the
// session falls back to 0% and the outcome carries a warning.
func (s *Session) ApplyDiscountCode(ctx context.Context, code string) (DiscountOutcome, error) {
	s.mu.Lock()
	err := s.editableLocked()
	s.mu.Unlock()
	if err != nil {
		return DiscountOutcome{}, err
	}

	var out DiscountOutcome
	if code != "" {
		if s.resolver == nil {
			out.Warning = discount.ErrNotFound
		} else if d, err := s.resolver.Resolve(ctx, code); err != nil {
			out.Warning = discount.ErrNotFound
			if !errors.Is(err, discount.ErrNotFound) {
				s.log.WithError(err).WithField("code", code).Warn("discount lookup failed")
				out.Warning = fmt.Errorf("%w: %v", discount.ErrNotFound, err)
			}
		} else {
			out.Discount = Discount{Code: d.Code, Percentage: d.Percentage, Reason: d.Reason}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return DiscountOutcome{}, err
	}
	s.discount = out.Discount
	return out, nil
}

// Proceed moves to the customer-information step.  Exactly Quantity
// seats must be selected.  The hold timer restarts from the time left.
func (s *Session) Proceed() error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(s.selected) != s.quantity {
		n := s.quantity
		s.mu.Unlock()
		return &ValidationError{Field: "seats", Reason: fmt.Sprintf("select exactly %d seat(s)", n)}
	}
	s.checkout = true
	stale := s.restartTimerLocked()
	s.mu.Unlock()
	stale()
	return nil
}

// Back returns from checkout to seat selection.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.checkout = false
	return nil
}

// Cancel aborts the session, releasing all seats and stopping the timer.
// Cancelling an aborted session is a no-op.
func (s *Session) Cancel() error {
	s.mu.Lock()
	switch {
	case s.final == StatusAborted:
		s.mu.Unlock()
		return nil
	case s.final != 0 || s.committing:
		err := s.editableLocked()
		s.mu.Unlock()
		return err
	}
	s.final = StatusAborted
	s.closedAt = s.clock.Now()
	s.clearSelectionLocked()
	stop := s.detachTimerLocked()
	s.mu.Unlock()
	stop()
	s.log.Info("session cancelled")
	return nil
}

// BeginCommit freezes the session for the committer.  It fails with
// ErrAlreadyExpired once the hold has run out.
func (s *Session) BeginCommit() (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return Order{}, err
	}
	if len(s.selected) != s.quantity {
		return Order{}, &ValidationError{Field: "seats", Reason: fmt.Sprintf("select exactly %d seat(s)", s.quantity)}
	}
	s.committing = true
	subtotal := pricing.Subtotal(s.prices, s.selected)
	return Order{
		SessionID:  s.id,
		Event:      s.event,
		Showing:    s.showing,
		Hall:       s.snap.Layout.Hall(),
		Seats:      append([]model.SeatID(nil), s.selected...),
		Wheelchair: s.wheelchair,
		Subtotal:   subtotal,
		Discount:   s.discount,
		Final:      discount.Round(discount.Apply(subtotal, s.discount.Percentage)),
	}, nil
}

// FinishCommit records the outcome of a commit started by BeginCommit.
// On success the session is Committed and its timer stopped.  On failure
// the session returns to seat selection; seats reported by a seat
// conflict are marked booked and deselected.  If the hold ran out while
// committing, a failed commit expires the session.
func (s *Session) FinishCommit(err error) {
	s.mu.Lock()
	if !s.committing {
		s.mu.Unlock()
		return
	}
	s.committing = false
	if err == nil {
		s.final = StatusCommitted
		s.closedAt = s.clock.Now()
		stop := s.detachTimerLocked()
		s.mu.Unlock()
		stop()
		return
	}

	var c conflict
	if errors.As(err, &c) {
		s.markBookedLocked(c.ConflictingSeats())
	}
	if s.remaining <= 0 {
		s.expireLocked()
		onExpire := s.onExpire
		s.mu.Unlock()
		s.log.Info("seat hold expired during failed commit")
		if onExpire != nil {
			onExpire()
		}
		return
	}
	s.mu.Unlock()
}

func (s *Session) markBookedLocked(ids []model.SeatID) {
	booked := make(map[model.SeatID]bool, len(s.snap.Booked)+len(ids))
	for id := range s.snap.Booked {
		booked[id] = true
	}
	for _, id := range ids {
		booked[id] = true
		if s.isSelectedLocked(id) {
			s.deselectLocked(id)
		}
	}
	s.snap.Booked = booked
	s.checkout = false
}

func (s *Session) expireLocked() {
	s.final = StatusExpired
	s.closedAt = s.clock.Now()
	s.clearSelectionLocked()
	s.stopTimer = nil
}

// Close stops the timer and aborts the session if it is still open.  It
// is used when a session is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if s.final == 0 && !s.committing {
		s.final = StatusAborted
		s.closedAt = s.clock.Now()
		s.clearSelectionLocked()
	}
	stop := s.detachTimerLocked()
	s.mu.Unlock()
	stop()
}

// closedSince reports whether the session reached a terminal state
// before t.
func (s *Session) closedSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final != 0 && s.closedAt.Before(t)
}
