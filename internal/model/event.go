package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hall types stored in Event.Hall_Type.
const (
	SmallHall = "Small Hall"
	LargeHall = "Large Hall"
)

// Event represents a row in the `Event` table.  An event is a single
// performance at a date and time in one of the two halls.
//
// Fields:
//
//	ID            – primary key (e.g. "EVT001").
//	Name          – display name.
//	Type          – LivePerformance, Film, Concert, Conference, SmallEvent.
//	Price         – flat ticket price applied to every seat.
//	HallType      – "Small Hall" or "Large Hall".
//	Date          – calendar date of the performance (UTC midnight).
//	Time          – start time formatted HH:MM.
//	TicketRevenue – running total of sold ticket value.
//	TicketNumbers – running total of sold seats.
type Event struct {
	ID            string          // Event.Event_ID
	Name          string          // Event.Event_Name
	Type          string          // Event.Event_Type
	Price         decimal.Decimal // Event.Event_Price
	HallType      string          // Event.Hall_Type
	Date          time.Time       // Event.Event_Date
	Time          string          // Event.Event_Time
	TicketRevenue decimal.Decimal // Event.Ticket_Revenue
	TicketNumbers int             // Event.Ticket_Numbers
}

// DefaultEvents returns the built-in programme used when the Event
// table is empty.  All events are dated on the given day.
func DefaultEvents(day time.Time) []Event {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return []Event{
		{ID: "EVT001", Name: "Event A", Type: "LivePerformance", Price: decimal.RequireFromString("50.00"), HallType: LargeHall, Date: d, Time: "19:30"},
		{ID: "EVT002", Name: "Event B", Type: "Conference", Price: decimal.RequireFromString("75.50"), HallType: SmallHall, Date: d, Time: "14:00"},
		{ID: "EVT003", Name: "Event C", Type: "Concert", Price: decimal.RequireFromString("65.25"), HallType: LargeHall, Date: d, Time: "20:00"},
	}
}
