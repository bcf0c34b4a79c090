package booking

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDSource generates record identifiers.
type IDSource interface {
	CustomerID() string
	TicketID() string
	BookingID() string
}

type uuidIDs struct{}

func hexID() (string, uuid.UUID) {
	u := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")), u
}

// CustomerID returns ids like "CUS_3FA07".
func (uuidIDs) CustomerID() string {
	h, u := hexID()
	return fmt.Sprintf("CUS_%s%02d", h[:3], int(u[15])%100)
}

// TicketID returns ids like "TKT-9C41D2E0".
func (uuidIDs) TicketID() string {
	h, _ := hexID()
	return "TKT-" + h[:8]
}

// BookingID returns ids like "BKG-5B7A11".
func (uuidIDs) BookingID() string {
	h, _ := hexID()
	return "BKG-" + h[:6]
}
