// Package receipt renders the printable ticket handed over at the
// counter: one A5 page with the booking details and a QR code of the
// ticket id for entry scanning.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/venue-box-office/internal/model"
)

// QRSize is the edge length in pixels of the generated QR image.
const QRSize = 256

// QRCodePNG encodes text as a PNG QR code with medium error correction.
func QRCodePNG(text string, size int) ([]byte, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("encode QR to PNG: %w", err)
	}
	return png, nil
}

// Render returns the PDF receipt of rec.
func Render(rec model.TicketRecord) ([]byte, error) {
	t, ev := rec.Ticket, rec.Event
	png, err := QRCodePNG(t.ID, QRSize)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Ticket "+t.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, ascii(ev.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s  |  %s %s", t.Hall, ev.Date.Format("Mon 2 Jan 2006"), ev.Time), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	name := "qr_" + t.ID
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	const qrMM = 60.0
	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions(name, (pageW-qrMM)/2, pdf.GetY(), qrMM, qrMM, false, opts, 0, "")
	pdf.Ln(qrMM + 4)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(4)

	seats := make([]string, len(rec.Seats))
	for i, s := range rec.Seats {
		seats[i] = string(s)
	}
	rows := [][2]string{
		{"Ticket", t.ID},
		{"Customer", ascii(rec.Customer.Name)},
		{"Seats", strings.Join(seats, ", ")},
		{"Wheelchair", yesNo(t.Wheelchair)},
		{"Discounted", yesNo(t.EligibleForDiscount)},
		{"Total", "GBP " + t.Price.StringFixed(2)},
	}
	for _, r := range rows {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(35, 8, r[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 8, r[1], "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, "Please present this ticket at the entrance.\nThe QR code is scanned on entry.", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// ascii replaces characters outside the core PDF font encoding.
func ascii(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 126 {
			return '?'
		}
		return r
	}, s)
}
