package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/pricing"
	"github.com/iliyamo/venue-box-office/internal/session"
)

// EventHandler serves the programme and the seat map viewer.
type EventHandler struct {
	Events    EventSource
	Inventory *inventory.Inventory
	Log       logrus.FieldLogger
}

func NewEventHandler(events EventSource, inv *inventory.Inventory, log logrus.FieldLogger) *EventHandler {
	return &EventHandler{Events: events, Inventory: inv, Log: log.WithField("component", "http")}
}

// List handles GET /v1/events.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	events, err := h.Events.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]eventView, 0, len(events))
	for _, ev := range events {
		out = append(out, newEventView(ev))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Seating handles GET /v1/events/:id/seating?pricing=flat|tiered.  It
// returns the hall layout with each seat's price and availability.
// Tiered prices are for display only; bookings are always charged the
// flat event price.
func (h *EventHandler) Seating(c echo.Context) error {
	mode := strings.ToLower(strings.TrimSpace(c.QueryParam("pricing")))
	if mode != "" && mode != pricing.ModeFlat && mode != pricing.ModeTiered {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pricing must be flat or tiered", "field": "pricing"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	snap, err := h.Inventory.Snapshot(ctx, ev, ev.Date, ev.Time)
	if err != nil {
		return fail(c, h.Log, err)
	}
	prices, err := pricing.ForMode(mode, ev, snap.Layout)
	if err != nil {
		return fail(c, h.Log, err)
	}

	seats := make([]seatView, 0, snap.Layout.Len())
	available := 0
	for _, d := range snap.Layout.Seats() {
		status := session.SeatAvailable
		if snap.IsBooked(d.ID) {
			status = session.SeatBooked
		} else {
			available++
		}
		seats = append(seats, seatView{
			ID:         d.ID,
			Row:        d.Row,
			Number:     d.Number,
			Section:    d.Section,
			Wheelchair: d.WheelchairAccessible,
			VIP:        d.VIP,
			Restricted: d.RestrictedView,
			Price:      prices.PriceOf(d.ID).StringFixed(2),
			Status:     status,
		})
	}
	if mode == "" {
		mode = pricing.ModeFlat
	}
	out := echo.Map{
		"event":     newEventView(ev),
		"hall":      snap.Layout.Hall(),
		"pricing":   mode,
		"capacity":  snap.Layout.Len(),
		"available": available,
		"seats":     seats,
	}
	if snap.Degraded {
		out["degraded"] = true
		out["warning"] = snap.Warning.Error()
	}
	return c.JSON(http.StatusOK, out)
}
