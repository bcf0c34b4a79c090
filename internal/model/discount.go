package model

// Discount represents a row in the `Discount` table.  Codes are
// generated by staff from the fixed reason table and are immutable;
// a code may be used by any number of bookings.
type Discount struct {
	Code       string // Discount.code
	Percentage int    // Discount.percentage
	Reason     string // Discount.reason
}
