// Package discount generates and resolves staff discount codes.
package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/model"
)

var (
	// ErrNotFound is returned when no discount exists for a code.
	ErrNotFound = errors.New("discount code not found")
	// ErrCodeExists is returned by a Store when a code is already taken.
	ErrCodeExists = errors.New("discount code already exists")
	// ErrUnknownReason is returned when generating a code for a reason
	// outside the fixed table.
	ErrUnknownReason = errors.New("unknown discount reason")
)

// Reason is one entry of the discount reason table.
type Reason struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

var reasons = []Reason{
	{"NHS Personnel", 15},
	{"Military Personnel", 15},
	{"Disabled Guest + Carer", 20},
	{"Local Resident", 10},
	{"Student", 10},
}

// Reasons returns the fixed reason table.
func Reasons() []Reason {
	out := make([]Reason, len(reasons))
	copy(out, reasons)
	return out
}

// LookupReason finds a reason by name, ignoring case.
func LookupReason(name string) (Reason, bool) {
	for _, r := range reasons {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, true
		}
	}
	return Reason{}, false
}

// Apply returns subtotal reduced by pct percent.  The result is not
// rounded; call Round when displaying or persisting it.
func Apply(subtotal decimal.Decimal, pct int) decimal.Decimal {
	if pct <= 0 {
		return subtotal
	}
	return subtotal.Mul(decimal.NewFromInt(int64(100 - pct))).Div(decimal.NewFromInt(100))
}

// Round rounds a money amount to two decimal places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// NewCode builds a code for a reason: the first three letters of the
// reason upper-cased, the percentage and six random characters,
// e.g. "NHS-15-1A2B3C".
func NewCode(r Reason) string {
	prefix := strings.ToUpper(strings.ReplaceAll(r.Name, " ", ""))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%d-%s", prefix, r.Percentage, suffix)
}

// Store persists discount codes.
type Store interface {
	Insert(ctx context.Context, d model.Discount) error
	GetByCode(ctx context.Context, code string) (model.Discount, error)
}

// Resolver validates and generates discount codes.
type Resolver struct {
	store Store
	log   logrus.FieldLogger
}

// NewResolver returns a Resolver over store.
func NewResolver(store Store, log logrus.FieldLogger) *Resolver {
	return &Resolver{store: store, log: log.WithField("component", "discount")}
}

// Resolve looks up a code.  Codes are matched exactly after trimming
// surrounding space.  An unknown code yields ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, code string) (model.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Discount{}, ErrNotFound
	}
	d, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return model.Discount{}, err
	}
	return d, nil
}

// Generate creates and stores a fresh code for the named reason.
func (r *Resolver) Generate(ctx context.Context, reasonName string) (model.Discount, error) {
	reason, ok := LookupReason(reasonName)
	if !ok {
		return model.Discount{}, fmt.Errorf("%w: %q", ErrUnknownReason, reasonName)
	}
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		d := model.Discount{Code: NewCode(reason), Percentage: reason.Percentage, Reason: reason.Name}
		if err = r.store.Insert(ctx, d); err == nil {
			r.log.WithFields(logrus.Fields{"code": d.Code, "reason": d.Reason}).Info("discount code generated")
			return d, nil
		}
		if !errors.Is(err, ErrCodeExists) {
			return model.Discount{}, err
		}
	}
	return model.Discount{}, err
}
