package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/leave"
	domain "github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/domain/timesheet"
)

var (
	hundred            = decimal.NewFromInt(100)
	overtimeMultiplier = decimal.NewFromFloat(1.5)
)

// HourTotals is the sum of worked and overtime hours over a set of timesheets.
type HourTotals struct {
	Worked   decimal.Decimal
	Overtime decimal.Decimal
}

// SumHours adds up total and overtime hours. Every approval status that
// reaches this function counts.
func SumHours(sheets []timesheet.Timesheet) HourTotals {
	totals := HourTotals{Worked: decimal.Zero, Overtime: decimal.Zero}
	for _, ts := range sheets {
		totals.Worked = totals.Worked.Add(ts.TotalHours)
		totals.Overtime = totals.Overtime.Add(ts.OvertimeHours)
	}
	return totals
}

// SumApprovedLeaveDays adds number_of_days for approved requests overlapping
// [from, to]. The full number_of_days counts for every month the request touches.
func SumApprovedLeaveDays(requests []leave.LeaveRequest, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range requests {
		if r.Status != leave.LeaveRequestStatusApproved || !r.Overlaps(from, to) {
			continue
		}
		total = total.Add(r.NumberOfDays)
	}
	return total
}

// AbsentDays is max(0, weekdays - workingDays - floor(approvedLeaves)).
func AbsentDays(weekdaysInMonth, workingDays int, approvedLeaves decimal.Decimal) int {
	absent := weekdaysInMonth - workingDays - int(approvedLeaves.Floor().IntPart())
	if absent < 0 {
		return 0
	}
	return absent
}

// BuildProjectBreakdown groups timesheets by project. Names come from names;
// a missing project or an unknown ID is labelled Unassigned. Groups are
// ordered by total hours descending, then by name and ID for stable output.
func BuildProjectBreakdown(sheets []timesheet.Timesheet, names map[string]string) []domain.ProjectBreakdown {
	type group struct {
		projectID *string
		dates     map[string]struct{}
		hours     decimal.Decimal
		ot        decimal.Decimal
	}

	groups := make(map[string]*group)
	var order []string
	for _, ts := range sheets {
		key := ""
		if ts.ProjectID != nil {
			key = *ts.ProjectID
		}
		g, ok := groups[key]
		if !ok {
			g = &group{
				projectID: ts.ProjectID,
				dates:     make(map[string]struct{}),
				hours:     decimal.Zero,
				ot:        decimal.Zero,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.dates[ts.WorkDate.UTC().Format(time.DateOnly)] = struct{}{}
		g.hours = g.hours.Add(ts.TotalHours)
		g.ot = g.ot.Add(ts.OvertimeHours)
	}

	breakdown := make([]domain.ProjectBreakdown, 0, len(order))
	for _, key := range order {
		g := groups[key]
		name := domain.UnassignedProjectName
		if g.projectID != nil {
			if n, ok := names[*g.projectID]; ok && n != "" {
				name = n
			}
		}
		breakdown = append(breakdown, domain.ProjectBreakdown{
			ProjectID:   g.projectID,
			ProjectName: name,
			DaysWorked:  len(g.dates),
			TotalHours:  g.hours,
			OTHours:     g.ot,
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		if c := breakdown[i].TotalHours.Cmp(breakdown[j].TotalHours); c != 0 {
			return c > 0
		}
		if breakdown[i].ProjectName != breakdown[j].ProjectName {
			return breakdown[i].ProjectName < breakdown[j].ProjectName
		}
		return projectKey(breakdown[i].ProjectID) < projectKey(breakdown[j].ProjectID)
	})
	return breakdown
}

func projectKey(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

// PayrollInput carries everything the payroll rules read.
type PayrollInput struct {
	PaymentType     employee.PaymentType
	Rate            *decimal.Decimal
	WorkedHours     decimal.Decimal
	OvertimeHours   decimal.Decimal
	WorkingDays     int
	WeekdaysInMonth int
	TaxPercentage   decimal.Decimal
}

// Payroll is the computed pay for one summary.
type Payroll struct {
	Subtotal      decimal.Decimal
	TaxPercentage decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

// Subtotal applies the payment-type rule:
//
//	hourly:   hours*rate + ot*rate*1.5
//	daily:    workingDays*rate
//	monthly:  rate*workingDays/weekdays (0 when weekdays is 0)
//	contract: rate
//
// Unknown types and missing rates yield 0.
func Subtotal(in PayrollInput) decimal.Decimal {
	if in.Rate == nil {
		return decimal.Zero
	}
	rate := *in.Rate

	switch in.PaymentType {
	case employee.PaymentTypeHourly:
		return in.WorkedHours.Mul(rate).Add(in.OvertimeHours.Mul(rate).Mul(overtimeMultiplier))
	case employee.PaymentTypeDaily:
		return decimal.NewFromInt(int64(in.WorkingDays)).Mul(rate)
	case employee.PaymentTypeMonthly:
		if in.WeekdaysInMonth == 0 {
			return decimal.Zero
		}
		return rate.Mul(decimal.NewFromInt(int64(in.WorkingDays))).Div(decimal.NewFromInt(int64(in.WeekdaysInMonth)))
	case employee.PaymentTypeContract:
		return rate
	default:
		return decimal.Zero
	}
}

// CalculatePayroll computes tax on the unrounded subtotal and rounds the total
// to cents. Subtotal and tax are reported rounded to cents, matching the
// stored column precision.
func CalculatePayroll(in PayrollInput) Payroll {
	subtotal := Subtotal(in)
	taxPct := in.TaxPercentage
	if taxPct.IsNegative() {
		taxPct = decimal.Zero
	}
	tax := subtotal.Mul(taxPct).Div(hundred)

	return Payroll{
		Subtotal:      subtotal.Round(2),
		TaxPercentage: taxPct,
		TaxAmount:     tax.Round(2),
		TotalAmount:   subtotal.Add(tax).Round(2),
	}
}
