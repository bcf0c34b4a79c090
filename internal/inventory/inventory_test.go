package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/config"
	"github.com/iliyamo/venue-box-office/internal/model"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestLayoutSizes(t *testing.T) {
	cases := []struct {
		hall string
		want int
	}{
		{"Small Hall", 95},
		{"large hall", 374},
	}
	for _, tc := range cases {
		l, err := LayoutFor(tc.hall, "")
		if err != nil {
			t.Fatalf("%s: %v", tc.hall, err)
		}
		if l.Len() != tc.want {
			t.Errorf("%s seats = %d, want %d", tc.hall, l.Len(), tc.want)
		}
	}
	if _, err := LayoutFor("Garden", ""); !errors.Is(err, ErrUnknownHall) {
		t.Fatalf("err = %v, want ErrUnknownHall", err)
	}
}

func TestLargeHallRows(t *testing.T) {
	l, _ := LayoutFor(model.LargeHall, "")
	for _, id := range []model.SeatID{"Q10", "P11", "O20", "M16", "A19", "CC8", "BB28", "AA53"} {
		if !l.Contains(id) {
			t.Errorf("missing %s", id)
		}
	}
	for _, id := range []model.SeatID{"I1", "Q11", "M17", "CC9", "BB29", "AA54"} {
		if l.Contains(id) {
			t.Errorf("unexpected %s", id)
		}
	}
	d, _ := l.Seat("AA10")
	if d.Section != model.SectionSideBalconyLeft {
		t.Errorf("AA10 section = %q", d.Section)
	}
	d, _ = l.Seat("BB24")
	if d.Section != model.SectionSideBalconyRight {
		t.Errorf("BB24 section = %q", d.Section)
	}
	if first, last := l.BlockBounds("AA25"); first != 21 || last != 33 {
		t.Errorf("AA25 block = %d..%d", first, last)
	}
}

func TestWheelchairAccessible(t *testing.T) {
	cases := []struct {
		hall string
		seat model.SeatID
		want bool
	}{
		{model.SmallHall, "A4", true},
		{model.SmallHall, "L5", true},
		{model.SmallHall, "D1", true},
		{model.SmallHall, "K7", true},
		{model.SmallHall, "D2", false},
		{model.SmallHall, "B8", true},
		{model.SmallHall, "C7", false},
		{model.SmallHall, "M1", false},
		{model.LargeHall, "A1", true},
		{model.LargeHall, "A19", true},
		{model.LargeHall, "A5", false},
		{model.LargeHall, "L19", true},
		{model.LargeHall, "CC8", true},
		{model.LargeHall, "BB6", true},
		{model.LargeHall, "BB7", false},
		{model.LargeHall, "AA33", true},
		{model.LargeHall, "AA20", false},
		{"Garden", "A1", false},
		{model.SmallHall, "1A", false},
	}
	for _, tc := range cases {
		if got := WheelchairAccessible(tc.hall, tc.seat); got != tc.want {
			t.Errorf("WheelchairAccessible(%s, %s) = %v, want %v", tc.hall, tc.seat, got, tc.want)
		}
	}
	// descriptors carry the same flag
	l, _ := LayoutFor(model.SmallHall, "")
	if d, _ := l.Seat("D7"); !d.WheelchairAccessible {
		t.Error("D7 descriptor not accessible")
	}
}

type stubLookup struct {
	ids []model.SeatID
	err error
}

func (s stubLookup) BookedSeats(context.Context, string, time.Time, string) ([]model.SeatID, error) {
	return s.ids, s.err
}

func TestSnapshot(t *testing.T) {
	ev := model.Event{ID: "EVT002", HallType: model.SmallHall}
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	inv := New(stubLookup{ids: []model.SeatID{"A1", "B2"}}, quietLog())
	snap, err := inv.Snapshot(context.Background(), ev, day, "14:00")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Degraded || snap.Warning != nil {
		t.Fatal("healthy lookup produced degraded snapshot")
	}
	if !snap.IsBooked("A1") || snap.IsBooked("A2") {
		t.Fatalf("booked = %v", snap.Booked)
	}
	if got := len(snap.Available()); got != 93 {
		t.Fatalf("available = %d, want 93", got)
	}
}

func TestSnapshotFallsBackOnLookupError(t *testing.T) {
	ev := model.Event{ID: "EVT002", HallType: model.SmallHall}
	inv := New(stubLookup{err: errors.New("connection refused")}, quietLog())
	snap, err := inv.Snapshot(context.Background(), ev, time.Now(), "14:00")
	if err != nil {
		t.Fatalf("lookup failure must not fail the snapshot: %v", err)
	}
	if !snap.Degraded || !errors.Is(snap.Warning, ErrInventoryUnavailable) {
		t.Fatalf("degraded=%v warning=%v", snap.Degraded, snap.Warning)
	}
	// only fallback seats that exist in the Small Hall
	for _, id := range []model.SeatID{"A5", "C8", "F4", "L1", "M3", "N2", "A1"} {
		if !snap.IsBooked(id) {
			t.Errorf("%s should be booked in fallback", id)
		}
	}
	if len(snap.Booked) != 7 {
		t.Errorf("fallback booked = %d seats, want 7", len(snap.Booked))
	}
}

func TestSnapshotUnknownHall(t *testing.T) {
	inv := New(stubLookup{}, quietLog())
	_, err := inv.Snapshot(context.Background(), model.Event{ID: "X", HallType: "Unknown"}, time.Now(), "")
	if !errors.Is(err, ErrUnknownHall) {
		t.Fatalf("err = %v", err)
	}
}

func TestRedisCacheWithoutClientProxies(t *testing.T) {
	c := NewRedisCache(stubLookup{ids: []model.SeatID{"A1"}}, nil, testCacheConfig(), quietLog())
	ids, err := c.BookedSeats(context.Background(), "EVT001", time.Now(), "19:30")
	if err != nil || len(ids) != 1 {
		t.Fatalf("ids=%v err=%v", ids, err)
	}
	if err := c.Invalidate(context.Background(), "EVT001", time.Now(), "19:30"); err != nil {
		t.Fatal(err)
	}
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if k := c.Key("EVT001", day, "19:30"); k != "booked:EVT001:2025-03-01:19:30" {
		t.Fatalf("key = %q", k)
	}
}

func testCacheConfig() config.AvailabilityCacheConfig {
	return config.AvailabilityCacheConfig{Enabled: true, TTL: time.Second, Prefix: "booked"}
}
