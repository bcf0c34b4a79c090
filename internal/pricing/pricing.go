// Package pricing computes seat prices.  Two models exist: a flat
// per-event price used when selling tickets, and a tiered per-section
// price used by the seating configuration viewer.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/model"
)

// Model prices a single seat.  A seat that is not part of the model's
// layout is priced at zero.
type Model interface {
	PriceOf(id model.SeatID) decimal.Decimal
}

// Pricing modes accepted by ForMode.
const (
	ModeFlat   = "flat"
	ModeTiered = "tiered"
)

var (
	vipFactor        = decimal.RequireFromString("1.5")
	restrictedFactor = decimal.RequireFromString("0.7")
)

// FlatEventPrice charges the event price for every seat.
type FlatEventPrice struct {
	price  decimal.Decimal
	layout *inventory.Layout
}

// NewFlatEventPrice returns a flat model over layout.
func NewFlatEventPrice(price decimal.Decimal, layout *inventory.Layout) FlatEventPrice {
	return FlatEventPrice{price: price, layout: layout}
}

// PriceOf implements Model.
func (f FlatEventPrice) PriceOf(id model.SeatID) decimal.Decimal {
	if f.layout == nil || !f.layout.Contains(id) {
		return decimal.Zero
	}
	return f.price
}

type modified struct {
	base   Model
	layout *inventory.Layout
}

// WithModifiers wraps base so that VIP seats cost ×1.5 and
// restricted-view seats ×0.7.  A seat carrying both flags costs ×1.05.
func WithModifiers(base Model, layout *inventory.Layout) Model {
	return modified{base: base, layout: layout}
}

func (m modified) PriceOf(id model.SeatID) decimal.Decimal {
	d, ok := m.layout.Seat(id)
	if !ok {
		return decimal.Zero
	}
	p := m.base.PriceOf(id)
	if d.VIP {
		p = p.Mul(vipFactor)
	}
	if d.RestrictedView {
		p = p.Mul(restrictedFactor)
	}
	return p
}

// Subtotal sums the prices of seats without rounding.
func Subtotal(m Model, seats []model.SeatID) decimal.Decimal {
	sum := decimal.Zero
	for _, id := range seats {
		sum = sum.Add(m.PriceOf(id))
	}
	return sum
}

// ForMode returns the model for a viewer mode.  Booking always uses
// ModeFlat.
func ForMode(mode string, ev model.Event, layout *inventory.Layout) (Model, error) {
	switch mode {
	case "", ModeFlat:
		return NewFlatEventPrice(ev.Price, layout), nil
	case ModeTiered:
		return Tiered(layout), nil
	}
	return nil, fmt.Errorf("unknown pricing mode %q", mode)
}
