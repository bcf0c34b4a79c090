package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// BookedSeatRepo reads the Booked_Seats table.  A seat is booked for a
// showing when a Booked_Seats row references a ticket of the event held
// at that date and time.
type BookedSeatRepo struct {
	db *sql.DB
}

// NewBookedSeatRepo returns a new BookedSeatRepo bound to the given database.
func NewBookedSeatRepo(db *sql.DB) *BookedSeatRepo { return &BookedSeatRepo{db: db} }

const bookedSeatsQuery = `SELECT bs.Seat_ID
	FROM Booked_Seats bs
	JOIN Ticket t ON t.Ticket_ID = bs.Ticket_ID
	JOIN Event e ON e.Event_ID = t.Event_ID
	WHERE e.Event_ID = ? AND e.Event_Date = ? AND e.Event_Time = ?`

// BookedSeats implements inventory.BookedSeatLookup.
func (r *BookedSeatRepo) BookedSeats(ctx context.Context, eventID string, date time.Time, showTime string) ([]model.SeatID, error) {
	return querySeats(ctx, r.db, bookedSeatsQuery, eventID, date.Format("2006-01-02"), showTime)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySeats(ctx context.Context, q queryer, query string, args ...any) ([]model.SeatID, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SeatID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, model.SeatID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
