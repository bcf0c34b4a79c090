package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// EventRepo provides read access to the Event table.  Ticket statistics
// are written by the booking and refund transactions, not here.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `Event_ID, Event_Name, Event_Type, Event_Price, Hall_Type, Event_Date, Event_Time, Ticket_Revenue, Ticket_Numbers`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var ev model.Event
	err := row.Scan(&ev.ID, &ev.Name, &ev.Type, &ev.Price, &ev.HallType, &ev.Date, &ev.Time, &ev.TicketRevenue, &ev.TicketNumbers)
	ev.Date = ev.Date.UTC()
	return ev, err
}

// List returns every event ordered by date and start time.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM Event ORDER BY Event_Date, Event_Time, Event_ID`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id string) (model.Event, error) {
	ev, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM Event WHERE Event_ID = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	return ev, err
}

// SeedDefaults loads the built-in programme dated on day when the Event
// table is empty.  It reports how many events were inserted.
func (r *EventRepo) SeedDefaults(ctx context.Context, day time.Time) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Event`).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	const q = `INSERT INTO Event (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0)`
	events := model.DefaultEvents(day)
	for _, ev := range events {
		if _, err := r.db.ExecContext(ctx, q, ev.ID, ev.Name, ev.Type, ev.Price, ev.HallType, ev.Date, ev.Time); err != nil {
			return 0, err
		}
	}
	return len(events), nil
}
