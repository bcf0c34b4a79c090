package discount

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/model"
)

type mapStore struct {
	codes   map[string]model.Discount
	collide int // number of inserts to reject as duplicates
}

func (m *mapStore) Insert(_ context.Context, d model.Discount) error {
	if m.collide > 0 {
		m.collide--
		return ErrCodeExists
	}
	m.codes[d.Code] = d
	return nil
}

func (m *mapStore) GetByCode(_ context.Context, code string) (model.Discount, error) {
	d, ok := m.codes[code]
	if !ok {
		return model.Discount{}, ErrNotFound
	}
	return d, nil
}

func newResolver(s *mapStore) *Resolver {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewResolver(s, l)
}

func TestApplyAndRound(t *testing.T) {
	cases := []struct {
		subtotal string
		pct      int
		want     string
	}{
		{"150.00", 15, "127.50"},
		{"100", 0, "100"},
		{"65.25", 10, "58.73"}, // 58.725 rounds half up
		{"75.50", 20, "60.40"},
	}
	for _, tc := range cases {
		got := Round(Apply(decimal.RequireFromString(tc.subtotal), tc.pct))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Apply(%s, %d) = %s, want %s", tc.subtotal, tc.pct, got, tc.want)
		}
	}
	if got := Round(Apply(decimal.RequireFromString("150.00"), 15)).StringFixed(2); got != "127.50" {
		t.Errorf("display = %q", got)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	r := newResolver(&mapStore{codes: map[string]model.Discount{}})
	for _, code := range []string{"NOPE-1-XXXXXX", "", "   "} {
		if _, err := r.Resolve(context.Background(), code); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) err = %v, want ErrNotFound", code, err)
		}
	}
}

func TestGenerateThenResolve(t *testing.T) {
	s := &mapStore{codes: map[string]model.Discount{}, collide: 1}
	r := newResolver(s)
	d, err := r.Generate(context.Background(), "nhs personnel")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^NHS-15-[0-9A-F]{6}$`).MatchString(d.Code) {
		t.Fatalf("code = %q", d.Code)
	}
	got, err := r.Resolve(context.Background(), " "+d.Code+" ")
	if err != nil {
		t.Fatal(err)
	}
	if got.Percentage != 15 || got.Reason != "NHS Personnel" {
		t.Fatalf("resolved %+v", got)
	}
}

func TestGenerateUnknownReason(t *testing.T) {
	r := newResolver(&mapStore{codes: map[string]model.Discount{}})
	if _, err := r.Generate(context.Background(), "Pensioner"); !errors.Is(err, ErrUnknownReason) {
		t.Fatalf("err = %v", err)
	}
}

func TestReasonTable(t *testing.T) {
	want := map[string]int{
		"NHS Personnel": 15, "Military Personnel": 15, "Disabled Guest + Carer": 20,
		"Local Resident": 10, "Student": 10,
	}
	got := Reasons()
	if len(got) != len(want) {
		t.Fatalf("got %d reasons", len(got))
	}
	for _, r := range got {
		if want[r.Name] != r.Percentage {
			t.Errorf("%s = %d", r.Name, r.Percentage)
		}
	}
	if c := NewCode(Reason{"Disabled Guest + Carer", 20}); c[:7] != "DIS-20-" {
		t.Errorf("code = %q", c)
	}
}
