package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// TicketRepo loads and refunds booked tickets.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketRecordQuery = `SELECT t.Ticket_ID, t.Hall, t.Ticket_Type, t.Eligible_For_Discount, t.Wheelchair, t.Price,
	       t.Priority_Status, t.Customer_ID, t.Event_ID, t.Seat_ID,
	       e.Event_ID, e.Event_Name, e.Event_Type, e.Event_Price, e.Hall_Type, e.Event_Date, e.Event_Time,
	       e.Ticket_Revenue, e.Ticket_Numbers,
	       c.Customer_ID, c.Name, c.Opt_IN, c.Payment_Type, c.Gender, c.Postal_Code, c.Email_Address, c.Phone_Number
	FROM Ticket t
	JOIN Event e ON e.Event_ID = t.Event_ID
	JOIN Customer c ON c.Customer_ID = t.Customer_ID
	WHERE t.Ticket_ID = ?`

const ticketSeatsQuery = `SELECT Seat_ID FROM Booked_Seats WHERE Ticket_ID = ? ORDER BY Seat_ID`

type rowQueryer interface {
	queryer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadRecord(ctx context.Context, q rowQueryer, query, ticketID string) (model.TicketRecord, error) {
	var rec model.TicketRecord
	t, e, c := &rec.Ticket, &rec.Event, &rec.Customer
	var seat string
	err := q.QueryRowContext(ctx, query, ticketID).Scan(
		&t.ID, &t.Hall, &t.Type, &t.EligibleForDiscount, &t.Wheelchair, &t.Price,
		&t.PriorityStatus, &t.CustomerID, &t.EventID, &seat,
		&e.ID, &e.Name, &e.Type, &e.Price, &e.HallType, &e.Date, &e.Time,
		&e.TicketRevenue, &e.TicketNumbers,
		&c.ID, &c.Name, &c.OptIn, &c.PaymentType, &c.Gender, &c.PostalCode, &c.Email, &c.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TicketRecord{}, ErrTicketNotFound
	}
	if err != nil {
		return model.TicketRecord{}, err
	}
	t.SeatID = model.SeatID(seat)
	e.Date = e.Date.UTC()
	if rec.Seats, err = querySeats(ctx, q, ticketSeatsQuery, ticketID); err != nil {
		return model.TicketRecord{}, err
	}
	return rec, nil
}

// GetRecord returns a ticket with its event, customer and seats, or
// ErrTicketNotFound.
func (r *TicketRepo) GetRecord(ctx context.Context, ticketID string) (model.TicketRecord, error) {
	return loadRecord(ctx, r.db, ticketRecordQuery, ticketID)
}

// Refund deletes a ticket together with its Booked_Seats and
// Booking_Details rows and takes the sale off the event statistics.
// Everything happens in one transaction.  The deleted record is
// returned.
func (r *TicketRepo) Refund(ctx context.Context, ticketID string) (model.TicketRecord, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return model.TicketRecord{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := loadRecord(ctx, tx, ticketRecordQuery+` FOR UPDATE`, ticketID)
	if err != nil {
		return model.TicketRecord{}, err
	}
	for _, q := range []string{
		`DELETE FROM Booked_Seats WHERE Ticket_ID = ?`,
		`DELETE FROM Booking_Details WHERE Ticket_ID = ?`,
		`DELETE FROM Ticket WHERE Ticket_ID = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, ticketID); err != nil {
			return model.TicketRecord{}, err
		}
	}
	if err := addEventSales(ctx, tx, rec.Ticket.EventID, rec.Ticket.Price.Neg(), -len(rec.Seats)); err != nil {
		return model.TicketRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.TicketRecord{}, err
	}
	committed = true
	return rec, nil
}
