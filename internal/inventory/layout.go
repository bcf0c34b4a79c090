// Package inventory builds hall seat layouts and derives per-showing
// availability from committed bookings.
package inventory

import (
	"errors"
	"strings"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// ErrUnknownHall is returned when a hall type names neither hall.
var ErrUnknownHall = errors.New("unknown hall type")

// rowBlock is a contiguous run of seat numbers in one section.
type rowBlock struct {
	first, last int
	section     string
}

type rowSpec struct {
	label  string
	blocks []rowBlock
}

func (r rowSpec) bounds() (int, int) {
	first, last := r.blocks[0].first, r.blocks[0].last
	for _, b := range r.blocks[1:] {
		if b.first < first {
			first = b.first
		}
		if b.last > last {
			last = b.last
		}
	}
	return first, last
}

var smallHallRows = func() []rowSpec {
	var rows []rowSpec
	for _, r := range "ABCDEFGHIJKLMN" {
		n := 7
		switch {
		case r <= 'C':
			n = 8
		case r == 'M' || r == 'N':
			n = 4
		}
		rows = append(rows, rowSpec{label: string(r), blocks: []rowBlock{{1, n, model.SectionStalls}}})
	}
	return rows
}()

// Stalls skip the letter I.
var largeStallCounts = map[string]int{"Q": 10, "P": 11, "O": 20, "N": 19, "M": 16}

var largeHallRows = func() []rowSpec {
	var rows []rowSpec
	for _, r := range "ABCDEFGHJKLMNOPQ" {
		n, ok := largeStallCounts[string(r)]
		if !ok {
			n = 19
		}
		rows = append(rows, rowSpec{label: string(r), blocks: []rowBlock{{1, n, model.SectionStalls}}})
	}
	return append(rows,
		rowSpec{label: "CC", blocks: []rowBlock{{1, 8, model.SectionBalcony}}},
		rowSpec{label: "BB", blocks: []rowBlock{
			{1, 5, model.SectionSideBalconyLeft},
			{6, 23, model.SectionBalcony},
			{24, 28, model.SectionSideBalconyRight},
		}},
		rowSpec{label: "AA", blocks: []rowBlock{
			{1, 20, model.SectionSideBalconyLeft},
			{21, 33, model.SectionBalcony},
			{34, 53, model.SectionSideBalconyRight},
		}},
	)
}()

// NormalizeHall maps free-form hall names ("large hall", "Small") onto
// the canonical hall type constants.  It returns "" for anything else.
func NormalizeHall(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "large"):
		return model.LargeHall
	case strings.Contains(s, "small"):
		return model.SmallHall
	}
	return ""
}

// Layout is the immutable seat map of a hall for a given event type.
type Layout struct {
	hall      string
	eventType string
	rows      []rowSpec
	seats     []model.SeatDescriptor
	index     map[model.SeatID]int
	rowIndex  map[string]int
}

// LayoutFor returns the seat layout of a hall.  The event type only
// influences the VIP and restricted-view flags.
func LayoutFor(hallType, eventType string) (*Layout, error) {
	hall := NormalizeHall(hallType)
	var rows []rowSpec
	switch hall {
	case model.SmallHall:
		rows = smallHallRows
	case model.LargeHall:
		rows = largeHallRows
	default:
		return nil, ErrUnknownHall
	}
	l := &Layout{
		hall:      hall,
		eventType: eventType,
		rows:      rows,
		index:     make(map[model.SeatID]int),
		rowIndex:  make(map[string]int, len(rows)),
	}
	for i, r := range rows {
		l.rowIndex[r.label] = i
		for _, b := range r.blocks {
			for n := b.first; n <= b.last; n++ {
				d := model.SeatDescriptor{
					ID:      model.NewSeatID(r.label, n),
					Row:     r.label,
					Number:  n,
					Section: b.section,
				}
				d.WheelchairAccessible = WheelchairAccessible(hall, d.ID)
				d.VIP = isVIP(hall, eventType, d)
				d.RestrictedView = isRestricted(hall, r, d)
				l.index[d.ID] = len(l.seats)
				l.seats = append(l.seats, d)
			}
		}
	}
	return l, nil
}

// Hall returns the canonical hall type.
func (l *Layout) Hall() string { return l.hall }

// EventType returns the event type the layout was built for.
func (l *Layout) EventType() string { return l.eventType }

// Len returns the number of seats.
func (l *Layout) Len() int { return len(l.seats) }

// Seats returns the descriptors in row order (front stalls first).
func (l *Layout) Seats() []model.SeatDescriptor {
	out := make([]model.SeatDescriptor, len(l.seats))
	copy(out, l.seats)
	return out
}

// Seat looks up a descriptor by id.
func (l *Layout) Seat(id model.SeatID) (model.SeatDescriptor, bool) {
	i, ok := l.index[id]
	if !ok {
		return model.SeatDescriptor{}, false
	}
	return l.seats[i], true
}

// Contains reports whether the seat exists in this layout.
func (l *Layout) Contains(id model.SeatID) bool {
	_, ok := l.index[id]
	return ok
}

// RowPosition returns the 1-based position of a row within its hall
// and the number of rows in the same part of the hall (stalls or
// balcony).
func (l *Layout) RowPosition(row string) (pos, of int) {
	i, ok := l.rowIndex[row]
	if !ok {
		return 0, 0
	}
	if isBalconyRow(row) {
		return i - l.stallRows() + 1, len(l.rows) - l.stallRows()
	}
	return i + 1, l.stallRows()
}

// RowBounds returns the lowest and highest seat numbers of a row.
func (l *Layout) RowBounds(row string) (first, last int) {
	i, ok := l.rowIndex[row]
	if !ok {
		return 0, 0
	}
	return l.rows[i].bounds()
}

// BlockBounds returns the seat number range of the section block the
// seat belongs to.
func (l *Layout) BlockBounds(id model.SeatID) (first, last int) {
	d, ok := l.Seat(id)
	if !ok {
		return 0, 0
	}
	for _, b := range l.rows[l.rowIndex[d.Row]].blocks {
		if d.Number >= b.first && d.Number <= b.last {
			return b.first, b.last
		}
	}
	return 0, 0
}

func (l *Layout) stallRows() int {
	n := 0
	for _, r := range l.rows {
		if !isBalconyRow(r.label) {
			n++
		}
	}
	return n
}

func isBalconyRow(row string) bool { return len(row) == 2 }

func isVIP(hall, eventType string, d model.SeatDescriptor) bool {
	if hall != model.LargeHall || !strings.EqualFold(eventType, "Concert") {
		return false
	}
	switch d.Row {
	case "A", "B", "C":
		return true
	case "CC":
		return d.Number >= 3 && d.Number <= 6
	case "BB":
		return d.Number >= 10 && d.Number <= 19
	}
	return false
}

func isRestricted(hall string, r rowSpec, d model.SeatDescriptor) bool {
	if hall != model.LargeHall {
		return false
	}
	switch d.Section {
	case model.SectionStalls:
		_, last := r.bounds()
		return d.Number <= 2 || d.Number >= last-1
	case model.SectionSideBalconyLeft, model.SectionSideBalconyRight:
		return d.Row == "AA" && (d.Number <= 5 || d.Number >= 49)
	case model.SectionBalcony:
		return d.Row == "AA" && (d.Number == 21 || d.Number == 33)
	}
	return false
}
