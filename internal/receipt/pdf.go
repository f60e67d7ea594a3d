package receipt

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
)

var itemCols = []float64{76, 18, 38, 38}

// Core PDF fonts have no rupee glyph.
func money(v float64) string { return fmt.Sprintf("Rs. %.2f", v) }

// RenderPDF lays the receipt out as an A4 tax invoice.
func RenderPDF(r Receipt, b Business) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt #%d", r.OrderID), false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(b.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(b.Address), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr(b.Contact), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	details := [][2]string{
		{"Order ID:", fmt.Sprintf("#%d", r.OrderID)},
		{"Order Date:", r.OrderedAt.Format("2006-01-02")},
		{"Order Time:", r.OrderedAt.Format("15:04:05")},
		{"Order Mode:", string(r.Mode)},
		{"Payment Method:", string(r.Payment)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, d := range details {
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(50, 6, d[0], "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, d[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(211, 211, 211)
	for i, h := range []string{"Item", "Qty", "Unit Price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(itemCols[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(245, 245, 245)
	for _, l := range r.Lines {
		pdf.CellFormat(itemCols[0], 7, tr(l.Name), "1", 0, "L", true, 0, "")
		pdf.CellFormat(itemCols[1], 7, strconv.Itoa(l.Qty), "1", 0, "R", true, 0, "")
		pdf.CellFormat(itemCols[2], 7, money(l.UnitPrice), "1", 0, "R", true, 0, "")
		pdf.CellFormat(itemCols[3], 7, money(l.Total), "1", 1, "R", true, 0, "")
	}
	pdf.Ln(4)

	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	y := pdf.GetY()
	pdf.SetLineWidth(0.4)
	pdf.Line(left, y, pageW-right, y)
	pdf.Ln(4)

	summary := [][2]string{
		{"Subtotal:", money(r.Subtotal)},
		{"GST:", money(r.GST)},
		{"Discount:", "-" + money(r.Discount)},
	}
	if r.Tip > 0 {
		summary = append(summary, [2]string{"Tip:", money(r.Tip)})
	}
	for _, s := range summary {
		pdf.CellFormat(127, 6, s[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, s[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(127, 7, "TOTAL PAYABLE:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, money(r.Total), "", 1, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Thank you for your visit!", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "For any queries, please contact us.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf for order %d: %w", r.OrderID, err)
	}
	return buf.Bytes(), nil
}
