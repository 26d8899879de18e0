package summary

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
)

// Status enum
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
)

// UnassignedProjectName labels timesheet hours with no resolvable project.
const UnassignedProjectName = "Unassigned"

// ProjectBreakdown - hours grouped by project, persisted as JSONB
type ProjectBreakdown struct {
	ProjectID   *string         `json:"project_id"`
	ProjectName string          `json:"project_name"`
	DaysWorked  int             `json:"days_worked"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	OTHours     decimal.Decimal `json:"ot_hours"`
}

// MonthlySummary - payroll rollup for one employee and calendar month
type MonthlySummary struct {
	ID               string
	EmployeeID       string
	PeriodMonth      int
	PeriodYear       int
	TotalWorkingDays int
	TotalWorkedHours decimal.Decimal
	TotalOTHours     decimal.Decimal
	ApprovedLeaves   decimal.Decimal
	AbsentDays       int
	ProjectBreakdown []ProjectBreakdown
	PaymentType      *employee.PaymentType
	Subtotal         decimal.Decimal
	TaxPercentage    decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	InvoiceNumber    *string
	InvoiceSeq       *int
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
}

// IsApproved reports whether the summary is locked against regeneration.
func (s MonthlySummary) IsApproved() bool {
	return s.Status == StatusApproved
}

// Outcome of a single generation call
type Outcome string

const (
	OutcomeGenerated       Outcome = "generated"
	OutcomeSkippedApproved Outcome = "skipped_approved"
)

// GenerateResult carries the persisted (or untouched, when approved) summary.
type GenerateResult struct {
	Summary MonthlySummary
	Outcome Outcome
}

// Err returns ErrApprovedLocked for skipped results so callers that treat the
// lock as a soft error can use errors.Is.
func (r GenerateResult) Err() error {
	if r.Outcome == OutcomeSkippedApproved {
		return ErrApprovedLocked
	}
	return nil
}
