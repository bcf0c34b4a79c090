package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-box-office/internal/model"
)

func TestRender(t *testing.T) {
	rec := model.TicketRecord{
		Ticket:   model.Ticket{ID: "TKT-9C41D2E0", Hall: model.SmallHall, Price: decimal.RequireFromString("151"), EligibleForDiscount: true},
		Event:    model.Event{ID: "EVT002", Name: "Event B", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Time: "14:00"},
		Customer: model.Customer{Name: "Zoë Adams"},
		Seats:    []model.SeatID{"E3", "E4"},
	}
	pdf, err := Render(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", pdf[:8])
	}
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG("TKT-00000001", 128)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("not a PNG")
	}
}

func TestASCII(t *testing.T) {
	if got := ascii("Zoë"); got != "Zo?" {
		t.Fatalf("ascii = %q", got)
	}
}
