package summary

import "context"

type SummaryService interface {
	// GenerateSummary computes and upserts one employee's summary for the month.
	GenerateSummary(ctx context.Context, employeeID string, month, year int) (GenerateResult, error)

	// GenerateForEmployeeRef accepts an employee ID or full name.
	GenerateForEmployeeRef(ctx context.Context, ref string, month, year int) (GenerateResult, error)

	// GenerateBatch runs GenerateSummary for every employee and never stops on
	// a single employee's failure.
	GenerateBatch(ctx context.Context, month, year int) (BatchReport, error)

	GetByID(ctx context.Context, id string) (MonthlySummary, error)
	List(ctx context.Context, filter SummaryFilter) ([]MonthlySummary, int64, error)
}
