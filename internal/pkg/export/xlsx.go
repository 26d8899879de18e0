package export

import (
	"fmt"
	"io"
	"path"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/xuri/excelize/v2"
)

const (
	RegisterSheet  = "Summaries"
	BreakdownSheet = "Project Breakdown"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var registerHeader = []any{
	"Employee", "Employee ID", "Period", "Working Days", "Worked Hours", "OT Hours",
	"Approved Leave", "Absent Days", "Payment Type", "Subtotal", "Tax %", "Tax",
	"Total", "Invoice Number", "Status",
}

var breakdownHeader = []any{
	"Employee", "Period", "Project", "Project ID", "Days Worked", "Hours", "OT Hours",
}

// RegisterFileName is the storage name of the register for a period.
func RegisterFileName(month, year int) string {
	return fmt.Sprintf("monthly-summaries-%04d-%02d.xlsx", year, month)
}

// RegisterKey is the storage key of the register for a period.
func RegisterKey(month, year int) string {
	return path.Join("exports/monthly-summaries", fmt.Sprintf("%04d", year), RegisterFileName(month, year))
}

// WriteSummaryRegister renders one row per summary on the register sheet and
// one row per project group on the breakdown sheet, then writes the workbook to w.
func WriteSummaryRegister(w io.Writer, summaries []summary.MonthlySummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RegisterSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(BreakdownSheet); err != nil {
		return fmt.Errorf("failed to create breakdown sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeader(f, RegisterSheet, registerHeader, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, BreakdownSheet, breakdownHeader, headerStyle); err != nil {
		return err
	}

	row, breakdownRow := 2, 2
	for _, s := range summaries {
		name := employeeLabel(s)
		period := fmt.Sprintf("%04d-%02d", s.PeriodYear, s.PeriodMonth)

		values := []any{
			name, s.EmployeeID, period, s.TotalWorkingDays,
			money(s.TotalWorkedHours), money(s.TotalOTHours), money(s.ApprovedLeaves), s.AbsentDays,
			paymentTypeLabel(s), money(s.Subtotal), money(s.TaxPercentage), money(s.TaxAmount),
			money(s.TotalAmount), deref(s.InvoiceNumber), string(s.Status),
		}
		if err := setRow(f, RegisterSheet, row, values); err != nil {
			return err
		}
		row++

		for _, p := range s.ProjectBreakdown {
			values := []any{
				name, period, p.ProjectName, deref(p.ProjectID), p.DaysWorked,
				money(p.TotalHours), money(p.OTHours),
			}
			if err := setRow(f, BreakdownSheet, breakdownRow, values); err != nil {
				return err
			}
			breakdownRow++
		}
	}

	if err := f.SetColWidth(RegisterSheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(BreakdownSheet, "A", "C", 24); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func employeeLabel(s summary.MonthlySummary) string {
	if s.EmployeeName != nil && *s.EmployeeName != "" {
		return *s.EmployeeName
	}
	return s.EmployeeID
}

func paymentTypeLabel(s summary.MonthlySummary) string {
	if s.PaymentType == nil {
		return ""
	}
	return string(*s.PaymentType)
}
