package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/middleware"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/pricing"
	"github.com/iliyamo/venue-box-office/internal/session"
)

const dateLayout = "2006-01-02"

// requestTimeout bounds the storage calls made by one request.
const requestTimeout = 5 * time.Second

// EventSource looks events up.  Both the MySQL repository and the
// in-memory store satisfy it.
type EventSource interface {
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (model.Event, error)
}

// SessionHandler serves the reservation session endpoints.
type SessionHandler struct {
	Sessions  *session.Manager
	Events    EventSource
	Inventory *inventory.Inventory
	Committer *booking.Committer
	Log       logrus.FieldLogger
}

// NewSessionHandler constructs a SessionHandler and panics if any
// dependency is nil.
func NewSessionHandler(m *session.Manager, events EventSource, inv *inventory.Inventory, c *booking.Committer, log logrus.FieldLogger) *SessionHandler {
	if m == nil || events == nil || inv == nil || c == nil {
		panic("nil dependency passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: m, Events: events, Inventory: inv, Committer: c, Log: log.WithField("component", "http")}
}

type showingReq struct {
	EventID string `json:"event_id"`
	Date    string `json:"date"` // optional, defaults to the event date
	Time    string `json:"time"` // optional, defaults to the event time
}

type openReq struct {
	showingReq
	Quantity   int  `json:"quantity"`
	Wheelchair bool `json:"wheelchair"`
}

type optionsReq struct {
	Quantity   *int  `json:"quantity"`
	Wheelchair *bool `json:"wheelchair"`
}

type discountReq struct {
	Code string `json:"code"`
}

type bookingResp struct {
	BookingID   string         `json:"booking_id"`
	TicketID    string         `json:"ticket_id"`
	CustomerID  string         `json:"customer_id"`
	NewCustomer bool           `json:"new_customer"`
	Seats       []model.SeatID `json:"seats"`
	Subtotal    string         `json:"subtotal"`
	Discount    int            `json:"discount_percent"`
	Total       string         `json:"total"`
	ConfirmedAt time.Time      `json:"confirmed_at"`
}

// showing resolves the event of req and checks that the requested date
// and time are the ones the event plays.
func (h *SessionHandler) showing(ctx context.Context, req showingReq) (model.Event, session.Showing, error) {
	id := strings.TrimSpace(req.EventID)
	if id == "" {
		return model.Event{}, session.Showing{}, &session.ValidationError{Field: "event_id", Reason: "required"}
	}
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return model.Event{}, session.Showing{}, err
	}
	sh := session.Showing{EventID: ev.ID, Date: ev.Date, Time: ev.Time}
	if d := strings.TrimSpace(req.Date); d != "" {
		parsed, err := time.Parse(dateLayout, d)
		if err != nil {
			return model.Event{}, session.Showing{}, &session.ValidationError{Field: "date", Reason: "use YYYY-MM-DD"}
		}
		if !parsed.Equal(ev.Date) {
			return model.Event{}, session.Showing{}, &session.ValidationError{Field: "date", Reason: fmt.Sprintf("%s plays on %s", ev.ID, ev.Date.Format(dateLayout))}
		}
	}
	if t := strings.TrimSpace(req.Time); t != "" && t != ev.Time {
		return model.Event{}, session.Showing{}, &session.ValidationError{Field: "time", Reason: fmt.Sprintf("%s starts at %s", ev.ID, ev.Time)}
	}
	return ev, sh, nil
}

func (h *SessionHandler) snapshot(ctx context.Context, ev model.Event, sh session.Showing) (inventory.Snapshot, pricing.Model, error) {
	snap, err := h.Inventory.Snapshot(ctx, ev, sh.Date, sh.Time)
	if err != nil {
		return inventory.Snapshot{}, nil, err
	}
	prices, err := pricing.ForMode(pricing.ModeFlat, ev, snap.Layout)
	if err != nil {
		return inventory.Snapshot{}, nil, err
	}
	return snap, prices, nil
}

// current returns the session named by :id for the calling staff member.
func (h *SessionHandler) current(c echo.Context) (*session.Session, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return h.Sessions.Get(c.Param("id"), u.Owner())
}

func (h *SessionHandler) state(c echo.Context, status int, s *session.Session) error {
	return c.JSON(status, newSessionView(s.State(), true))
}

// Open handles POST /v1/sessions.
func (h *SessionHandler) Open(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req openReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	ev, sh, err := h.showing(ctx, req.showingReq)
	if err != nil {
		return fail(c, h.Log, err)
	}
	snap, prices, err := h.snapshot(ctx, ev, sh)
	if err != nil {
		return fail(c, h.Log, err)
	}
	s, err := h.Sessions.Open(session.Config{
		Owner:      u.Owner(),
		Event:      ev,
		Showing:    sh,
		Quantity:   req.Quantity,
		Wheelchair: req.Wheelchair,
	}, snap, prices)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return h.state(c, http.StatusCreated, s)
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return h.state(c, http.StatusOK, s)
}

// Reselect handles PUT /v1/sessions/:id/showing.
func (h *SessionHandler) Reselect(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req showingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	ev, sh, err := h.showing(ctx, req)
	if err != nil {
		return fail(c, h.Log, err)
	}
	snap, prices, err := h.snapshot(ctx, ev, sh)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := s.Reselect(ev, sh, snap, prices); err != nil {
		return fail(c, h.Log, err)
	}
	return h.state(c, http.StatusOK, s)
}

// Options handles PUT /v1/sessions/:id/options.  Both fields are
// optional; each change clears the selection.
func (h *SessionHandler) Options(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req optionsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity != nil {
		if err := s.SetQuantity(*req.Quantity); err != nil {
			return fail(c, h.Log, err)
		}
	}
	if req.Wheelchair != nil {
		if err := s.SetWheelchair(*req.Wheelchair); err != nil {
			return fail(c, h.Log, err)
		}
	}
	return h.state(c, http.StatusOK, s)
}

// ToggleSeat handles POST /v1/sessions/:id/seats/:seat.
func (h *SessionHandler) ToggleSeat(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	row, n, err := model.ParseSeatID(c.Param("seat"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "field": "seat"})
	}
	res, err := s.ToggleSeat(model.NewSeatID(row, n))
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := echo.Map{"seat": res.Seat, "selected": res.Selected, "session": newSessionView(s.State(), false)}
	if res.Companion != "" {
		out["companion"] = res.Companion
	}
	return c.JSON(http.StatusOK, out)
}

// ApplyDiscount handles POST /v1/sessions/:id/discount.  An unusable
// code is not an error: the session carries 0% and a warning is
// returned.
func (h *SessionHandler) ApplyDiscount(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req discountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := s.ApplyDiscountCode(ctx, req.Code)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := echo.Map{"session": newSessionView(s.State(), false)}
	if res.Warning != nil {
		out["warning"] = "discount code not recognised; no discount applied"
	}
	return c.JSON(http.StatusOK, out)
}

// Proceed handles POST /v1/sessions/:id/proceed.
func (h *SessionHandler) Proceed(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := s.Proceed(); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newSessionView(s.State(), false))
}

// Back handles POST /v1/sessions/:id/back.
func (h *SessionHandler) Back(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := s.Back(); err != nil {
		return fail(c, h.Log, err)
	}
	return h.state(c, http.StatusOK, s)
}

// Commit handles POST /v1/sessions/:id/commit with the customer details
// as body.
func (h *SessionHandler) Commit(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var info booking.CustomerInfo
	if err := c.Bind(&info); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Committer.Commit(ctx, s, info)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, bookingResp{
		BookingID:   res.BookingID,
		TicketID:    res.TicketID,
		CustomerID:  res.CustomerID,
		NewCustomer: res.NewCustomer,
		Seats:       res.Seats,
		Subtotal:    res.Subtotal.StringFixed(2),
		Discount:    res.DiscountPercent,
		Total:       res.FinalPrice.StringFixed(2),
		ConfirmedAt: res.ConfirmedAt,
	})
}

// Cancel handles DELETE /v1/sessions/:id.  The hold is released and the
// session forgotten.
func (h *SessionHandler) Cancel(c echo.Context) error {
	s, err := h.current(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := s.Cancel(); err != nil {
		return fail(c, h.Log, err)
	}
	u, _ := middleware.CurrentUser(c)
	if err := h.Sessions.Close(s.ID(), u.Owner()); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
