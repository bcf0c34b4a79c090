package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/model"
)

// BookingStore runs booking commits against MySQL.  Each commit is one
// serializable transaction; the booked-seat re-check locks the rows it
// reads so two counters cannot sell the same seat.
type BookingStore struct {
	db *sql.DB
}

// NewBookingStore returns a new BookingStore bound to the given database.
func NewBookingStore(db *sql.DB) *BookingStore { return &BookingStore{db: db} }

// WithTx implements booking.Store.
func (s *BookingStore) WithTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type bookingTx struct {
	tx *sql.Tx
}

const customerColumns = `Customer_ID, Name, Opt_IN, Payment_Type, Gender, Postal_Code, Email_Address, Phone_Number`

func (b *bookingTx) FindCustomer(ctx context.Context, customerID, email string) (model.Customer, bool, error) {
	var c model.Customer
	err := b.tx.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM Customer WHERE Customer_ID = ? OR Email_Address = ? LIMIT 1`,
		customerID, email).
		Scan(&c.ID, &c.Name, &c.OptIn, &c.PaymentType, &c.Gender, &c.PostalCode, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, false, nil
	}
	if err != nil {
		return model.Customer{}, false, err
	}
	return c, true, nil
}

func (b *bookingTx) InsertCustomer(ctx context.Context, c model.Customer) error {
	_, err := b.tx.ExecContext(ctx,
		`INSERT INTO Customer (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.OptIn, c.PaymentType, c.Gender, c.PostalCode, c.Email, c.Phone)
	if isPrimaryKeyClash(err) {
		return fmt.Errorf("%w: %s", booking.ErrDuplicateCustomerID, c.ID)
	}
	return err
}

func (b *bookingTx) BookedAmong(ctx context.Context, eventID string, date time.Time, showTime string, seats []model.SeatID) ([]model.SeatID, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	query := bookedSeatsQuery + ` AND bs.Seat_ID IN (?` + strings.Repeat(", ?", len(seats)-1) + `) FOR UPDATE`
	args := make([]any, 0, len(seats)+3)
	args = append(args, eventID, date.Format("2006-01-02"), showTime)
	for _, id := range seats {
		args = append(args, string(id))
	}
	return querySeats(ctx, b.tx, query, args...)
}

func (b *bookingTx) InsertTicket(ctx context.Context, t model.Ticket) error {
	_, err := b.tx.ExecContext(ctx,
		`INSERT INTO Ticket (Ticket_ID, Hall, Ticket_Type, Eligible_For_Discount, Wheelchair, Price, Priority_Status, Customer_ID, Event_ID, Seat_ID)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Hall, t.Type, t.EligibleForDiscount, t.Wheelchair, t.Price, t.PriorityStatus, t.CustomerID, t.EventID, string(t.SeatID))
	return err
}

func (b *bookingTx) InsertBookingDetails(ctx context.Context, d model.BookingDetails) error {
	_, err := b.tx.ExecContext(ctx,
		`INSERT INTO Booking_Details (Booking_ID, Status, Customer_ID, Ticket_ID, Event_ID) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Status, d.CustomerID, d.TicketID, d.EventID)
	return err
}

// InsertBookedSeats writes all rows in a single statement.
func (b *bookingTx) InsertBookedSeats(ctx context.Context, rows []model.BookedSeat) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO Booked_Seats (Seat_ID, Ticket_ID) VALUES (?, ?)` + strings.Repeat(", (?, ?)", len(rows)-1)
	args := make([]any, 0, len(rows)*2)
	for _, r := range rows {
		args = append(args, string(r.SeatID), r.TicketID)
	}
	_, err := b.tx.ExecContext(ctx, query, args...)
	return err
}

func (b *bookingTx) AddEventSales(ctx context.Context, eventID string, revenue decimal.Decimal, tickets int) error {
	return addEventSales(ctx, b.tx, eventID, revenue, tickets)
}

func addEventSales(ctx context.Context, tx *sql.Tx, eventID string, revenue decimal.Decimal, tickets int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE Event SET Ticket_Revenue = Ticket_Revenue + ?, Ticket_Numbers = Ticket_Numbers + ? WHERE Event_ID = ?`,
		revenue, tickets, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
