package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/middleware"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/receipt"
	"github.com/iliyamo/venue-box-office/internal/refund"
)

// TicketLookup loads a booked ticket with its event, customer and seats.
type TicketLookup interface {
	GetRecord(ctx context.Context, ticketID string) (model.TicketRecord, error)
}

// TicketHandler serves receipts and refunds.
type TicketHandler struct {
	Tickets TicketLookup
	Refunds *refund.Service
	Log     logrus.FieldLogger
}

func NewTicketHandler(t TicketLookup, r *refund.Service, log logrus.FieldLogger) *TicketHandler {
	return &TicketHandler{Tickets: t, Refunds: r, Log: log.WithField("component", "http")}
}

type ticketView struct {
	TicketID   string         `json:"ticket_id"`
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	Hall       string         `json:"hall"`
	Date       string         `json:"date"`
	Time       string         `json:"time"`
	CustomerID string         `json:"customer_id"`
	Customer   string         `json:"customer"`
	Seats      []model.SeatID `json:"seats"`
	Wheelchair bool           `json:"wheelchair"`
	Price      string         `json:"price"`
}

func newTicketView(rec model.TicketRecord) ticketView {
	return ticketView{
		TicketID:   rec.Ticket.ID,
		EventID:    rec.Event.ID,
		EventName:  rec.Event.Name,
		Hall:       rec.Ticket.Hall,
		Date:       rec.Event.Date.Format(dateLayout),
		Time:       rec.Event.Time,
		CustomerID: rec.Customer.ID,
		Customer:   rec.Customer.Name,
		Seats:      rec.Seats,
		Wheelchair: rec.Ticket.Wheelchair,
		Price:      rec.Ticket.Price.StringFixed(2),
	}
}

// Get handles GET /v1/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := h.Tickets.GetRecord(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newTicketView(rec))
}

// Receipt handles GET /v1/tickets/:id/receipt and streams a PDF.
func (h *TicketHandler) Receipt(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := h.Tickets.GetRecord(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	pdf, err := receipt.Render(rec)
	if err != nil {
		return fail(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="ticket-`+rec.Ticket.ID+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// Refund handles DELETE /v1/tickets/:id with a reason body.  Managers and
// deputies only.
func (h *TicketHandler) Refund(c echo.Context) error {
	var req refund.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	by := ""
	if u, ok := middleware.CurrentUser(c); ok {
		by = u.Username
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := h.Refunds.Refund(ctx, c.Param("id"), req, by)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"refunded": newTicketView(rec), "reason": req.Reason})
}
