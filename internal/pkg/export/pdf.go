package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
)

const PDFContentType = "application/pdf"

// InvoiceFileName is the download name of a summary's invoice.
func InvoiceFileName(s summary.MonthlySummary) string {
	return deref(s.InvoiceNumber) + ".pdf"
}

// WriteInvoicePDF renders the invoice of a summary. Summaries without an
// invoice number return summary.ErrNoInvoice.
func WriteInvoicePDF(w io.Writer, issuer string, s summary.MonthlySummary) error {
	if s.InvoiceNumber == nil {
		return summary.ErrNoInvoice
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(*s.InvoiceNumber, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(issuer))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, "Invoice "+*s.InvoiceNumber)
	pdf.Ln(7)
	pdf.Cell(0, 8, tr("Employee: "+employeeLabel(s)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %04d-%02d", s.PeriodYear, s.PeriodMonth))
	pdf.Ln(7)
	if pt := paymentTypeLabel(s); pt != "" {
		pdf.Cell(0, 8, "Payment type: "+pt)
		pdf.Ln(7)
	}
	pdf.Ln(5)

	// line items
	widths := []float64{80, 30, 35, 35}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(221, 235, 247)
	for i, h := range []string{"Project", "Days", "Hours", "OT Hours"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, p := range s.ProjectBreakdown {
		pdf.CellFormat(widths[0], 7, tr(p.ProjectName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(p.DaysWorked), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, p.TotalHours.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, p.OTHours.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	totals := [][2]string{
		{"Working days", strconv.Itoa(s.TotalWorkingDays)},
		{"Worked hours", s.TotalWorkedHours.StringFixed(2)},
		{"Overtime hours", s.TotalOTHours.StringFixed(2)},
		{"Subtotal", s.Subtotal.StringFixed(2)},
		{"Tax (" + s.TaxPercentage.String() + "%)", s.TaxAmount.StringFixed(2)},
		{"Total", s.TotalAmount.StringFixed(2)},
	}
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 12)
		}
		pdf.CellFormat(110, 7, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(70, 7, t[1], "", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render invoice %s: %w", *s.InvoiceNumber, err)
	}
	return nil
}
