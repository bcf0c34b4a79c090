// Package queue defines the messages exchanged over the broker and the
// background consumer that records them.
package queue

// BookingConfirmedQueue is the durable queue carrying committed bookings.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a booking transaction
// commits.  It carries enough for downstream consumers to log, notify or
// feed analytics without querying the primary database.  Money fields are
// decimal strings with two places.
type BookingConfirmedEvent struct {
	BookingID       string   `json:"booking_id"`
	TicketID        string   `json:"ticket_id"`
	CustomerID      string   `json:"customer_id"`
	EventID         string   `json:"event_id"`
	EventName       string   `json:"event_name"`
	Hall            string   `json:"hall"`
	Date            string   `json:"date"` // YYYY-MM-DD
	Time            string   `json:"time"` // HH:MM
	Seats           []string `json:"seats"`
	Wheelchair      bool     `json:"wheelchair"`
	Subtotal        string   `json:"subtotal"`
	DiscountCode    string   `json:"discount_code,omitempty"`
	DiscountPercent int      `json:"discount_percent"`
	Total           string   `json:"total"`
	ConfirmedAt     string   `json:"confirmed_at"` // RFC3339
}
