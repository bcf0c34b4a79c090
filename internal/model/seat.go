package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SeatID identifies a seat within a hall layout.  It is the row label
// followed by the seat number, for example "A1" or "AA34".  Seat IDs are
// stored verbatim in Booked_Seats.Seat_ID and Ticket.Seat_ID.
type SeatID string

// NewSeatID joins a row label and a seat number into a SeatID.
func NewSeatID(row string, number int) SeatID {
	return SeatID(strings.ToUpper(row) + strconv.Itoa(number))
}

// ParseSeatID splits a SeatID into its row label and number.  The row
// must be one or more letters and the number a positive integer.
func ParseSeatID(s string) (row string, number int, err error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	i := 0
	for i < len(s) && unicode.IsLetter(rune(s[i])) {
		i++
	}
	if i == 0 || i == len(s) {
		return "", 0, fmt.Errorf("invalid seat id %q", s)
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("invalid seat id %q", s)
	}
	return s[:i], n, nil
}

// Section names used by the hall layouts.
const (
	SectionStalls           = "Stalls"
	SectionBalcony          = "Balcony"
	SectionSideBalconyLeft  = "Side Balcony Left"
	SectionSideBalconyRight = "Side Balcony Right"
)

// SeatDescriptor describes one physical seat of a hall layout.  Seats
// are not stored in the database; descriptors are recomputed from the
// hard-coded hall tables whenever a showing is chosen.
//
// Fields:
//
//	ID                   – row label + number.
//	Row                  – row label ("A", "AA").
//	Number               – seat number within the row.
//	Section              – stalls, balcony or one of the side balconies.
//	WheelchairAccessible – seat may be sold as a wheelchair space.
//	VIP                  – premium seat (price modifier ×1.5).
//	RestrictedView       – partially obstructed seat (price modifier ×0.7).
type SeatDescriptor struct {
	ID                   SeatID
	Row                  string
	Number               int
	Section              string
	WheelchairAccessible bool
	VIP                  bool
	RestrictedView       bool
}
