package summary

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

// ========== REQUEST DTOs ==========

func validatePeriod(month, year int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidYear(year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a valid calendar year"})
	}
	return errs
}

// ValidatePeriod rejects an invalid month or year with an error that wraps both
// ErrInvalidPeriod and the field-level validator.ValidationErrors.
func ValidatePeriod(month, year int) error {
	if errs := validatePeriod(month, year); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPeriod, errs)
	}
	return nil
}

type GenerateSummaryRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (r *GenerateSummaryRequest) Validate() error {
	errs := validatePeriod(r.Month, r.Year)

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GenerateBatchRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *GenerateBatchRequest) Validate() error {
	return ValidatePeriod(r.Month, r.Year)
}

type SummaryFilter struct {
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
	Status     *string `json:"status,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a valid calendar year"})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(StatusDraft), string(StatusSubmitted), string(StatusApproved)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be DRAFT, SUBMITTED or APPROVED"})
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "must be non-negative"})
	}
	if f.Limit < 0 || f.Limit > 500 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must be between 1 and 500"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApplyDefaults sets page 1 and limit 50 when unset.
func (f *SummaryFilter) ApplyDefaults() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
}

// Offset is the row offset for the current page.
func (f SummaryFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ========== RESPONSE DTOs ==========

type ProjectBreakdownResponse struct {
	ProjectID   *string         `json:"project_id"`
	ProjectName string          `json:"project_name"`
	DaysWorked  int             `json:"days_worked"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	OTHours     decimal.Decimal `json:"ot_hours"`
}

type SummaryResponse struct {
	ID               string                     `json:"id"`
	EmployeeID       string                     `json:"employee_id"`
	EmployeeName     *string                    `json:"employee_name,omitempty"`
	PeriodMonth      int                        `json:"period_month"`
	PeriodYear       int                        `json:"period_year"`
	TotalWorkingDays int                        `json:"total_working_days"`
	TotalWorkedHours decimal.Decimal            `json:"total_worked_hours"`
	TotalOTHours     decimal.Decimal            `json:"total_ot_hours"`
	ApprovedLeaves   decimal.Decimal            `json:"approved_leaves"`
	AbsentDays       int                        `json:"absent_days"`
	ProjectBreakdown []ProjectBreakdownResponse `json:"project_breakdown"`
	PaymentType      *string                    `json:"payment_type"`
	Subtotal         decimal.Decimal            `json:"subtotal"`
	TaxPercentage    decimal.Decimal            `json:"tax_percentage"`
	TaxAmount        decimal.Decimal            `json:"tax_amount"`
	TotalAmount      decimal.Decimal            `json:"total_amount"`
	InvoiceNumber    *string                    `json:"invoice_number"`
	Status           string                     `json:"status"`
	CreatedAt        string                     `json:"created_at"`
	UpdatedAt        string                     `json:"updated_at"`
}

type GenerateSummaryResponse struct {
	Outcome string          `json:"outcome"`
	Summary SummaryResponse `json:"summary"`
}

func NewSummaryResponse(s MonthlySummary) SummaryResponse {
	breakdown := make([]ProjectBreakdownResponse, 0, len(s.ProjectBreakdown))
	for _, p := range s.ProjectBreakdown {
		breakdown = append(breakdown, ProjectBreakdownResponse(p))
	}

	var paymentType *string
	if s.PaymentType != nil {
		pt := string(*s.PaymentType)
		paymentType = &pt
	}

	return SummaryResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		EmployeeName:     s.EmployeeName,
		PeriodMonth:      s.PeriodMonth,
		PeriodYear:       s.PeriodYear,
		TotalWorkingDays: s.TotalWorkingDays,
		TotalWorkedHours: s.TotalWorkedHours,
		TotalOTHours:     s.TotalOTHours,
		ApprovedLeaves:   s.ApprovedLeaves,
		AbsentDays:       s.AbsentDays,
		ProjectBreakdown: breakdown,
		PaymentType:      paymentType,
		Subtotal:         s.Subtotal,
		TaxPercentage:    s.TaxPercentage,
		TaxAmount:        s.TaxAmount,
		TotalAmount:      s.TotalAmount,
		InvoiceNumber:    s.InvoiceNumber,
		Status:           string(s.Status),
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func NewSummaryResponses(list []MonthlySummary) []SummaryResponse {
	result := make([]SummaryResponse, 0, len(list))
	for _, s := range list {
		result = append(result, NewSummaryResponse(s))
	}
	return result
}

// ========== BATCH REPORT ==========

// BatchOutcome is the per-employee result recorded by the batch driver.
type BatchOutcome string

const (
	BatchOutcomeSuccess         BatchOutcome = "success"
	BatchOutcomeSkippedApproved BatchOutcome = "skipped_approved"
	BatchOutcomeResolutionError BatchOutcome = "resolution_error"
	BatchOutcomeFailed          BatchOutcome = "failed"
)

type EmployeeOutcome struct {
	EmployeeID    string       `json:"employee_id"`
	EmployeeName  string       `json:"employee_name"`
	Outcome       BatchOutcome `json:"outcome"`
	SummaryID     string       `json:"summary_id,omitempty"`
	InvoiceNumber *string      `json:"invoice_number,omitempty"`
	Error         string       `json:"error,omitempty"`
}

type BatchReport struct {
	RunID            string            `json:"run_id"`
	PeriodMonth      int               `json:"period_month"`
	PeriodYear       int               `json:"period_year"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
	Total            int               `json:"total"`
	Succeeded        int               `json:"succeeded"`
	SkippedApproved  int               `json:"skipped_approved"`
	ResolutionErrors int               `json:"resolution_errors"`
	Failed           int               `json:"failed"`
	Outcomes         []EmployeeOutcome `json:"outcomes"`
}

// Tally recomputes the aggregate counts from Outcomes.
func (r *BatchReport) Tally() {
	r.Total = len(r.Outcomes)
	r.Succeeded, r.SkippedApproved, r.ResolutionErrors, r.Failed = 0, 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Outcome {
		case BatchOutcomeSuccess:
			r.Succeeded++
		case BatchOutcomeSkippedApproved:
			r.SkippedApproved++
		case BatchOutcomeResolutionError:
			r.ResolutionErrors++
		default:
			r.Failed++
		}
	}
}

// HasFailures reports whether any employee ended in an error outcome.
func (r BatchReport) HasFailures() bool {
	return r.ResolutionErrors > 0 || r.Failed > 0
}
