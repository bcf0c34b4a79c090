package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/model"
)

// SectionPrices holds the base price of each section of a hall.
type SectionPrices struct {
	Stalls      decimal.Decimal
	Balcony     decimal.Decimal
	SideBalcony decimal.Decimal
}

func flat(v string) SectionPrices {
	d := decimal.RequireFromString(v)
	return SectionPrices{Stalls: d, Balcony: d, SideBalcony: d}
}

var (
	defaultSectionPrices = flat("20")

	largeHallPrices = map[string]SectionPrices{
		"liveperformance": {decimal.NewFromInt(65), decimal.NewFromInt(85), decimal.NewFromInt(55)},
		"film":            {decimal.NewFromInt(45), decimal.NewFromInt(65), decimal.NewFromInt(35)},
		"concert":         {decimal.NewFromInt(85), decimal.NewFromInt(95), decimal.NewFromInt(75)},
	}
	smallHallPrices = map[string]SectionPrices{
		"conference": flat("30"),
		"smallevent": flat("25"),
	}
)

// SectionPricesFor returns the price table of a hall and event type.
// Unlisted combinations cost 20 everywhere.
func SectionPricesFor(hallType, eventType string) SectionPrices {
	key := strings.ToLower(strings.ReplaceAll(eventType, " ", ""))
	var table map[string]SectionPrices
	switch inventory.NormalizeHall(hallType) {
	case model.LargeHall:
		table = largeHallPrices
	case model.SmallHall:
		table = smallHallPrices
	}
	if p, ok := table[key]; ok {
		return p
	}
	return defaultSectionPrices
}

var (
	f120 = decimal.RequireFromString("1.2")
	f115 = decimal.RequireFromString("1.15")
	f110 = decimal.RequireFromString("1.1")
	f090 = decimal.RequireFromString("0.9")
	f085 = decimal.RequireFromString("0.85")
)

// TieredSectionPrice prices seats by section, then adjusts for row and
// position.  It does not apply the VIP and restricted-view modifiers;
// use Tiered for the full viewer model.
type TieredSectionPrice struct {
	layout *inventory.Layout
	prices SectionPrices
}

// NewTieredSectionPrice builds the tiered model of a layout.
func NewTieredSectionPrice(layout *inventory.Layout) TieredSectionPrice {
	return TieredSectionPrice{layout: layout, prices: SectionPricesFor(layout.Hall(), layout.EventType())}
}

// Tiered is NewTieredSectionPrice wrapped in WithModifiers.
func Tiered(layout *inventory.Layout) Model {
	return WithModifiers(NewTieredSectionPrice(layout), layout)
}

// PriceOf implements Model.
func (t TieredSectionPrice) PriceOf(id model.SeatID) decimal.Decimal {
	d, ok := t.layout.Seat(id)
	if !ok {
		return decimal.Zero
	}
	if t.layout.Hall() == model.SmallHall {
		return t.prices.Stalls.Mul(t.smallHallFactor(d))
	}
	switch d.Section {
	case model.SectionStalls:
		return t.prices.Stalls.Mul(t.stallsFactor(d))
	case model.SectionBalcony:
		return t.prices.Balcony.Mul(t.balconyFactor(d))
	default:
		return t.prices.SideBalcony.Mul(sideFactor(d))
	}
}

func (t TieredSectionPrice) smallHallFactor(d model.SeatDescriptor) decimal.Decimal {
	pos, of := t.layout.RowPosition(d.Row)
	switch {
	case pos <= 3:
		return f120
	case pos >= of-2:
		return f090
	}
	return decimal.NewFromInt(1)
}

func (t TieredSectionPrice) stallsFactor(d model.SeatDescriptor) decimal.Decimal {
	f := decimal.NewFromInt(1)
	_, last := t.layout.RowBounds(d.Row)
	switch {
	case d.Number >= 5 && d.Number <= 15:
		f = f115
	case d.Number <= 3 || d.Number >= last-2:
		f = f090
	}
	if pos, _ := t.layout.RowPosition(d.Row); pos >= 3 && pos <= 8 {
		f = f.Mul(f110)
	}
	return f
}

func (t TieredSectionPrice) balconyFactor(d model.SeatDescriptor) decimal.Decimal {
	first, last := t.layout.BlockBounds(d.ID)
	third := (last - first + 1) / 3
	switch {
	case d.Number <= first+1 || d.Number >= last-1:
		return f085
	case d.Number >= first+third && d.Number <= last-third:
		return f120
	}
	return decimal.NewFromInt(1)
}

func sideFactor(d model.SeatDescriptor) decimal.Decimal {
	switch {
	case d.Row == "BB":
		return f110
	case d.Number <= 5 || d.Number >= 49:
		return f090
	}
	return decimal.NewFromInt(1)
}
