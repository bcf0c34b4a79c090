package model

import "github.com/shopspring/decimal"

// Customer represents a row in the `Customer` table.  Customers are
// created on first booking and looked up by id or email afterwards.
//
// Fields:
//
//	ID          – primary key (e.g. "CUS_AB312").
//	Name        – full name as given at the counter.
//	OptIn       – marketing opt-in flag.
//	PaymentType – card, cash, ...
//	Gender      – optional.
//	PostalCode  – optional.
//	Email       – unique contact email.
//	Phone       – contact phone number.
type Customer struct {
	ID          string // Customer.Customer_ID
	Name        string // Customer.Name
	OptIn       bool   // Customer.Opt_IN
	PaymentType string // Customer.Payment_Type
	Gender      string // Customer.Gender
	PostalCode  string // Customer.Postal_Code
	Email       string // Customer.Email_Address
	Phone       string // Customer.Phone_Number
}

// Ticket defaults written on every booking.
const (
	TicketTypeStandard = "Standard"
	PriorityLow        = "Low"
)

// Ticket represents a row in the `Ticket` table.  One ticket is
// written per booking; SeatID holds the first selected seat while the
// full seat list lives in Booked_Seats.
type Ticket struct {
	ID                  string          // Ticket.Ticket_ID
	Hall                string          // Ticket.Hall
	Type                string          // Ticket.Ticket_Type
	EligibleForDiscount bool            // Ticket.Eligible_For_Discount
	Wheelchair          bool            // Ticket.Wheelchair
	Price               decimal.Decimal // Ticket.Price
	PriorityStatus      string          // Ticket.Priority_Status
	CustomerID          string          // Ticket.Customer_ID
	EventID             string          // Ticket.Event_ID
	SeatID              SeatID          // Ticket.Seat_ID
}

// BookingDetails represents a row in the `Booking_Details` table
// linking a customer to a ticket.
type BookingDetails struct {
	ID         string // Booking_Details.Booking_ID
	Status     bool   // Booking_Details.Status
	CustomerID string // Booking_Details.Customer_ID
	TicketID   string // Booking_Details.Ticket_ID
	EventID    string // Booking_Details.Event_ID
}

// BookedSeat represents a row in the `Booked_Seats` table.
type BookedSeat struct {
	SeatID   SeatID // Booked_Seats.Seat_ID
	TicketID string // Booked_Seats.Ticket_ID
}

// TicketRecord bundles a ticket with the rows it references.  It is
// returned by ticket lookups and refunds.
type TicketRecord struct {
	Ticket   Ticket
	Event    Event
	Customer Customer
	Seats    []SeatID
}
