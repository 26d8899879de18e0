package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	domain "github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"golang.org/x/sync/errgroup"
)

// GenerateBatch implements summary.SummaryService.
func (s *SummaryServiceImpl) GenerateBatch(ctx context.Context, month, year int) (domain.BatchReport, error) {
	if err := domain.ValidatePeriod(month, year); err != nil {
		return domain.BatchReport{}, err
	}

	report := domain.BatchReport{
		RunID:       uuid.NewString(),
		PeriodMonth: month,
		PeriodYear:  year,
		StartedAt:   s.now().UTC(),
	}

	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("failed to list employees: %w", err)
	}

	slog.Info("Monthly summary batch starting",
		"run_id", report.RunID, "month", month, "year", year,
		"employees", len(employees), "concurrency", s.opts.BatchConcurrency)

	// Each worker writes only its own slot, so outcomes keep listing order.
	report.Outcomes = make([]domain.EmployeeOutcome, len(employees))

	var g errgroup.Group
	g.SetLimit(s.opts.BatchConcurrency)
	for i, emp := range employees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Outcomes[i] = newOutcome(emp, domain.BatchOutcomeFailed, err)
				return nil
			}
			report.Outcomes[i] = s.runOne(ctx, emp, month, year)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now().UTC()
	report.Tally()

	slog.Info("Monthly summary batch finished",
		"run_id", report.RunID, "month", month, "year", year,
		"total", report.Total, "succeeded", report.Succeeded,
		"skipped_approved", report.SkippedApproved,
		"resolution_errors", report.ResolutionErrors, "failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

func (s *SummaryServiceImpl) runOne(ctx context.Context, emp employee.Employee, month, year int) domain.EmployeeOutcome {
	result, err := s.generateForEmployee(ctx, emp, month, year)
	if err != nil {
		var resErr *domain.ResolutionError
		if errors.As(err, &resErr) {
			slog.Warn("Monthly summary skipped, identity not resolved", "employee_id", emp.ID, "error", err)
			return newOutcome(emp, domain.BatchOutcomeResolutionError, err)
		}
		slog.Error("Monthly summary generation failed", "employee_id", emp.ID, "error", err)
		return newOutcome(emp, domain.BatchOutcomeFailed, err)
	}

	outcome := newOutcome(emp, domain.BatchOutcomeSuccess, nil)
	if result.Outcome == domain.OutcomeSkippedApproved {
		outcome.Outcome = domain.BatchOutcomeSkippedApproved
	}
	outcome.SummaryID = result.Summary.ID
	outcome.InvoiceNumber = result.Summary.InvoiceNumber
	return outcome
}

func newOutcome(emp employee.Employee, outcome domain.BatchOutcome, err error) domain.EmployeeOutcome {
	o := domain.EmployeeOutcome{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Outcome:      outcome,
	}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}
