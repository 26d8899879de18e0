package summary

import "context"

// SummaryRepository defines data access methods for monthly_summaries.
type SummaryRepository interface {
	GetByID(ctx context.Context, id string) (MonthlySummary, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error)

	// GetByEmployeePeriodForUpdate locks the row until the surrounding transaction ends.
	GetByEmployeePeriodForUpdate(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error)

	// Upsert writes the computed fields keyed by (employee_id, period_month, period_year)
	// and resets status to DRAFT. It returns ErrApprovedLocked when the stored row is
	// APPROVED and ErrSequenceConflict when the invoice number is already taken.
	Upsert(ctx context.Context, s MonthlySummary) (MonthlySummary, error)

	List(ctx context.Context, filter SummaryFilter) ([]MonthlySummary, int64, error)
}

// InvoiceSequenceRepository reserves invoice sequence numbers per (month, year) bucket.
type InvoiceSequenceRepository interface {
	// Next returns one more than the highest sequence issued for the bucket.
	// Must run inside a transaction; the bucket stays locked until it ends.
	Next(ctx context.Context, month, year int) (int, error)
}

// Transactor runs fn inside a database transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
