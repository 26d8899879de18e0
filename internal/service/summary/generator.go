package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/leave"
	domain "github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/domain/timesheet"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

// FormatInvoiceNumber renders PREFIX-YEAR-MONTH-SEQ, e.g. INV-2024-01-0007.
func FormatInvoiceNumber(prefix string, year, month, seq, width int) string {
	return fmt.Sprintf("%s-%04d-%02d-%0*d", prefix, year, month, width, seq)
}

// GenerateSummary implements summary.SummaryService.
func (s *SummaryServiceImpl) GenerateSummary(ctx context.Context, employeeID string, month, year int) (domain.GenerateResult, error) {
	if err := domain.ValidatePeriod(month, year); err != nil {
		return domain.GenerateResult{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return domain.GenerateResult{}, &domain.ResolutionError{EmployeeRef: employeeID, Reason: "employee not found", Err: err}
		}
		return domain.GenerateResult{}, &domain.AggregationError{Step: "employee", Err: err}
	}

	return s.generateForEmployee(ctx, emp, month, year)
}

// GenerateForEmployeeRef implements summary.SummaryService.
func (s *SummaryServiceImpl) GenerateForEmployeeRef(ctx context.Context, ref string, month, year int) (domain.GenerateResult, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.GenerateResult{}, validator.ValidationErrors{{Field: "employee", Message: "is required"}}
	}
	if err := domain.ValidatePeriod(month, year); err != nil {
		return domain.GenerateResult{}, err
	}

	if validator.IsValidUUID(ref) {
		return s.GenerateSummary(ctx, ref, month, year)
	}

	matches, err := s.employeeRepo.FindByFullName(ctx, ref)
	if err != nil {
		return domain.GenerateResult{}, &domain.AggregationError{Step: "employee", Err: err}
	}
	switch len(matches) {
	case 0:
		return domain.GenerateResult{}, &domain.ResolutionError{EmployeeRef: ref, Reason: "no employee with this id or name", Err: employee.ErrEmployeeNotFound}
	case 1:
		return s.generateForEmployee(ctx, matches[0], month, year)
	default:
		return domain.GenerateResult{}, fmt.Errorf("%w: %q matches %d employees", domain.ErrAmbiguousEmployee, ref, len(matches))
	}
}

func (s *SummaryServiceImpl) generateForEmployee(ctx context.Context, emp employee.Employee, month, year int) (domain.GenerateResult, error) {
	resolution, err := s.resolver.Resolve(ctx, emp)
	if err != nil {
		return domain.GenerateResult{}, &domain.AggregationError{Step: "identity", Err: err}
	}
	if resolution.Kind == NotFound {
		return domain.GenerateResult{}, &domain.ResolutionError{
			EmployeeRef: emp.ID,
			Reason:      "no linked user and no user with a matching email",
		}
	}

	for attempt := 1; ; attempt++ {
		result, err := s.generateOnce(ctx, emp, resolution.IdentityID, month, year)
		if err == nil {
			if result.Outcome == domain.OutcomeSkippedApproved {
				slog.Debug("Monthly summary approved, skipping", "employee_id", emp.ID, "month", month, "year", year)
			} else {
				slog.Debug("Monthly summary generated",
					"employee_id", emp.ID, "month", month, "year", year,
					"identity_source", resolution.Source, "attempt", attempt)
			}
			return result, nil
		}
		if !errors.Is(err, domain.ErrSequenceConflict) {
			return domain.GenerateResult{}, err
		}
		if attempt > s.opts.MaxSequenceRetries {
			return domain.GenerateResult{}, &domain.SequenceConflictError{Month: month, Year: year, Attempts: attempt, Err: err}
		}

		slog.Warn("Invoice sequence conflict, retrying", "employee_id", emp.ID, "month", month, "year", year, "attempt", attempt)
		select {
		case <-ctx.Done():
			return domain.GenerateResult{}, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.opts.RetryBackoff):
		}
	}
}

// generateOnce runs the guard, the aggregation and the upsert in a single
// transaction so a failure leaves nothing behind.
func (s *SummaryServiceImpl) generateOnce(ctx context.Context, emp employee.Employee, identityID string, month, year int) (domain.GenerateResult, error) {
	var result domain.GenerateResult

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.summaryRepo.GetByEmployeePeriodForUpdate(ctx, emp.ID, month, year)
		hasExisting := err == nil
		if err != nil && !errors.Is(err, domain.ErrSummaryNotFound) {
			return &domain.AggregationError{Step: "existing summary", Err: err}
		}
		if hasExisting && existing.IsApproved() {
			result = domain.GenerateResult{Summary: existing, Outcome: domain.OutcomeSkippedApproved}
			return nil
		}

		computed, err := s.compute(ctx, emp, identityID, month, year)
		if err != nil {
			return err
		}

		if computed.Subtotal.IsPositive() {
			if hasExisting && existing.InvoiceNumber != nil {
				computed.InvoiceNumber = existing.InvoiceNumber
				computed.InvoiceSeq = existing.InvoiceSeq
			} else {
				seq, err := s.sequenceRepo.Next(ctx, month, year)
				if err != nil {
					return &domain.AggregationError{Step: "invoice sequence", Err: err}
				}
				number := FormatInvoiceNumber(s.opts.InvoicePrefix, year, month, seq, s.opts.InvoiceSeqWidth)
				computed.InvoiceNumber = &number
				computed.InvoiceSeq = &seq
			}
		}

		saved, err := s.summaryRepo.Upsert(ctx, computed)
		switch {
		case err == nil:
			result = domain.GenerateResult{Summary: saved, Outcome: domain.OutcomeGenerated}
			return nil
		case errors.Is(err, domain.ErrApprovedLocked), errors.Is(err, domain.ErrSequenceConflict):
			// roll back so a reserved invoice number is released
			return err
		default:
			return &domain.AggregationError{Step: "upsert", Err: err}
		}
	})
	if errors.Is(err, domain.ErrApprovedLocked) {
		// approved by someone else after the guard read
		current, err := s.summaryRepo.GetByEmployeePeriod(ctx, emp.ID, month, year)
		if err != nil {
			return domain.GenerateResult{}, &domain.AggregationError{Step: "existing summary", Err: err}
		}
		return domain.GenerateResult{Summary: current, Outcome: domain.OutcomeSkippedApproved}, nil
	}
	if err != nil {
		return domain.GenerateResult{}, err
	}
	return result, nil
}

// compute reads the four sources and applies the payroll rules. It never writes.
func (s *SummaryServiceImpl) compute(ctx context.Context, emp employee.Employee, identityID string, month, year int) (domain.MonthlySummary, error) {
	bounds := NewMonthBounds(month, year)

	workingDays, err := s.attendanceRepo.CountDistinctCheckInDays(ctx, identityID, bounds.Start, bounds.Next)
	if err != nil {
		return domain.MonthlySummary{}, &domain.AggregationError{Step: "working days", Err: err}
	}

	sheets, err := s.timesheetRepo.ListByEmployeeInRange(ctx, emp.ID, bounds.FirstDay(), bounds.LastDay(), timesheet.CountedStatuses)
	if err != nil {
		return domain.MonthlySummary{}, &domain.AggregationError{Step: "timesheets", Err: err}
	}

	leaves, err := s.leaveRepo.ListOverlapping(ctx, emp.ID, leave.LeaveRequestStatusApproved, bounds.FirstDay(), bounds.LastDay())
	if err != nil {
		return domain.MonthlySummary{}, &domain.AggregationError{Step: "approved leave", Err: err}
	}

	names, err := s.projectRepo.GetNamesByIDs(ctx, projectIDs(sheets))
	if err != nil {
		return domain.MonthlySummary{}, &domain.AggregationError{Step: "project names", Err: err}
	}

	hours := SumHours(sheets)
	approvedLeaves := SumApprovedLeaveDays(leaves, bounds.FirstDay(), bounds.LastDay())
	weekdays := WeekdaysInMonth(month, year)

	pay := CalculatePayroll(PayrollInput{
		PaymentType:     emp.PaymentType,
		Rate:            emp.Rate(),
		WorkedHours:     hours.Worked,
		OvertimeHours:   hours.Overtime,
		WorkingDays:     workingDays,
		WeekdaysInMonth: weekdays,
		TaxPercentage:   s.opts.TaxPercentage,
	})

	var paymentType *employee.PaymentType
	if emp.PaymentType != "" {
		pt := emp.PaymentType
		paymentType = &pt
	}

	name := emp.FullName
	return domain.MonthlySummary{
		EmployeeID:       emp.ID,
		PeriodMonth:      month,
		PeriodYear:       year,
		TotalWorkingDays: workingDays,
		TotalWorkedHours: hours.Worked,
		TotalOTHours:     hours.Overtime,
		ApprovedLeaves:   approvedLeaves,
		AbsentDays:       AbsentDays(weekdays, workingDays, approvedLeaves),
		ProjectBreakdown: BuildProjectBreakdown(sheets, names),
		PaymentType:      paymentType,
		Subtotal:         pay.Subtotal,
		TaxPercentage:    pay.TaxPercentage,
		TaxAmount:        pay.TaxAmount,
		TotalAmount:      pay.TotalAmount,
		Status:           domain.StatusDraft,
		EmployeeName:     &name,
	}, nil
}

func projectIDs(sheets []timesheet.Timesheet) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, ts := range sheets {
		if ts.ProjectID == nil {
			continue
		}
		if _, ok := seen[*ts.ProjectID]; ok {
			continue
		}
		seen[*ts.ProjectID] = struct{}{}
		ids = append(ids, *ts.ProjectID)
	}
	return ids
}
