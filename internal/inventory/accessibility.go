package inventory

import "github.com/iliyamo/venue-box-office/internal/model"

// largeHallWheelchair lists the accessible seat numbers per row of the
// Large Hall.  Booking and the seating viewer both read this table.
var largeHallWheelchair = map[string][]int{
	"A":  {1, 19},
	"L":  {1, 19},
	"CC": {1, 8},
	"BB": {6, 23},
	"AA": {21, 33},
}

// WheelchairAccessible reports whether a seat is a wheelchair space in
// the given hall.  Unknown halls and malformed ids are never accessible.
func WheelchairAccessible(hallType string, id model.SeatID) bool {
	row, n, err := model.ParseSeatID(string(id))
	if err != nil {
		return false
	}
	switch NormalizeHall(hallType) {
	case model.SmallHall:
		switch {
		case row == "A" || row == "L":
			return true
		case len(row) == 1 && row[0] >= 'D' && row[0] <= 'K':
			return n == 1 || n == 7
		case row == "B" || row == "C":
			return n == 1 || n == 8
		}
	case model.LargeHall:
		for _, s := range largeHallWheelchair[row] {
			if s == n {
				return true
			}
		}
	}
	return false
}
