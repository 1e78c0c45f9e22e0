// Package receipt renders booking receipts as single-page PDFs.
package receipt

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/go-pdf/fpdf"
)

const (
	brand      = "EasyRent Vehicles"
	dateLayout = "02 Jan 2006 3:04 PM"
	footer     = "Thank you for booking with EasyRent! We wish you a safe ride."
)

var green = [3]int{40, 167, 69}

// Filename is the download name of a booking's receipt.
func Filename(bookingID int64) string {
	return fmt.Sprintf("BookingReceipt_%d.pdf", bookingID)
}

type Renderer struct {
	loc *time.Location
}

// NewRenderer formats dates in loc; nil means UTC.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{loc: loc}
}

func (r *Renderer) Render(w io.Writer, b *domain.Booking) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.SetAuthor(brand, false)
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFillColor(green[0], green[1], green[2])
	pdf.Rect(0, 0, pageWidth, 25, "F")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(0, 8)
	pdf.CellFormat(pageWidth, 10, brand, "", 1, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(0, 30)
	pdf.CellFormat(pageWidth, 8, "Booking Receipt", "", 1, "C", false, 0, "")

	const (
		left   = 15.0
		fieldW = 55.0
		rowH   = 9.0
	)
	detailW := pageWidth - 2*left - fieldW

	pdf.SetXY(left, 45)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(fieldW, rowH, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(detailW, rowH, "Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range r.rows(b) {
		pdf.SetX(left)
		pdf.CellFormat(fieldW, rowH, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(detailW, rowH, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, footer, "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return pdf.Output(w)
}

func (r *Renderer) rows(b *domain.Booking) [][2]string {
	return [][2]string{
		{"Booking ID", strconv.FormatInt(b.ID, 10)},
		{"Transaction ID", orNA(b.TransactionID)},
		{"Vehicle", orNA(b.VehicleName)},
		{"Pickup Location", orNA(b.Pickup)},
		{"Drop Location", orNA(b.Drop)},
		{"From", r.formatTime(b.PickupAt)},
		{"To", r.formatTime(b.DropAt)},
		{"Driver Name", orNA(b.DriverName)},
		{"Driver Contact", orNA(b.DriverContact)},
		{"Total Price", FormatPrice(b.Price)},
	}
}

func (r *Renderer) formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.In(r.loc).Format(dateLayout)
}

// FormatPrice renders whole currency units as "INR 12,345.00".
func FormatPrice(amount int64) string {
	if amount <= 0 {
		return "N/A"
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return "INR " + string(out) + ".00"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
