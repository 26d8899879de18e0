package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

const (
	uniqueViolationCode          = "23505"
	invoiceNumberConstraint      = "uk_monthly_summaries_invoice_number"
	summaryEmployeePeriodUniqKey = "uk_monthly_summaries_employee_period"
)

type summaryRepositoryImpl struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) summary.SummaryRepository {
	return &summaryRepositoryImpl{db: db}
}

const summaryColumns = `
	ms.id, ms.employee_id, ms.period_month, ms.period_year, ms.total_working_days,
	ms.total_worked_hours, ms.total_ot_hours, ms.approved_leaves, ms.absent_days,
	ms.project_breakdown, ms.payment_type, ms.subtotal, ms.tax_percentage, ms.tax_amount,
	ms.total_amount, ms.invoice_number, ms.invoice_seq, ms.status, ms.created_at, ms.updated_at`

func scanSummary(row pgx.Row, extra ...interface{}) (summary.MonthlySummary, error) {
	var s summary.MonthlySummary
	var breakdownBytes []byte
	var paymentType *string
	var status string

	dest := []interface{}{
		&s.ID, &s.EmployeeID, &s.PeriodMonth, &s.PeriodYear, &s.TotalWorkingDays,
		&s.TotalWorkedHours, &s.TotalOTHours, &s.ApprovedLeaves, &s.AbsentDays,
		&breakdownBytes, &paymentType, &s.Subtotal, &s.TaxPercentage, &s.TaxAmount,
		&s.TotalAmount, &s.InvoiceNumber, &s.InvoiceSeq, &status, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return summary.MonthlySummary{}, err
	}

	s.Status = summary.Status(status)
	if paymentType != nil {
		pt := employee.PaymentType(*paymentType)
		s.PaymentType = &pt
	}
	s.ProjectBreakdown = []summary.ProjectBreakdown{}
	if len(breakdownBytes) > 0 {
		if err := json.Unmarshal(breakdownBytes, &s.ProjectBreakdown); err != nil {
			return summary.MonthlySummary{}, fmt.Errorf("failed to decode project breakdown: %w", err)
		}
	}
	return s, nil
}

func (r *summaryRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (summary.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + `, e.full_name
		FROM monthly_summaries ms
		JOIN employees e ON e.id = ms.employee_id
		WHERE ` + where

	var employeeName *string
	s, err := scanSummary(q.QueryRow(ctx, query, args...), &employeeName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary.MonthlySummary{}, summary.ErrSummaryNotFound
		}
		return summary.MonthlySummary{}, fmt.Errorf("failed to get monthly summary: %w", err)
	}
	s.EmployeeName = employeeName
	return s, nil
}

// GetByID implements summary.SummaryRepository.
func (r *summaryRepositoryImpl) GetByID(ctx context.Context, id string) (summary.MonthlySummary, error) {
	if !validator.IsValidUUID(id) {
		return summary.MonthlySummary{}, summary.ErrSummaryNotFound
	}
	return r.getOne(ctx, "ms.id = $1", id)
}

// GetByEmployeePeriod implements summary.SummaryRepository.
func (r *summaryRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (summary.MonthlySummary, error) {
	return r.getOne(ctx, "ms.employee_id = $1 AND ms.period_month = $2 AND ms.period_year = $3", employeeID, month, year)
}

// GetByEmployeePeriodForUpdate implements summary.SummaryRepository.
func (r *summaryRepositoryImpl) GetByEmployeePeriodForUpdate(ctx context.Context, employeeID string, month, year int) (summary.MonthlySummary, error) {
	return r.getOne(ctx, "ms.employee_id = $1 AND ms.period_month = $2 AND ms.period_year = $3 FOR UPDATE OF ms", employeeID, month, year)
}

// Upsert implements summary.SummaryRepository.
func (r *summaryRepositoryImpl) Upsert(ctx context.Context, s summary.MonthlySummary) (summary.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)

	breakdown := s.ProjectBreakdown
	if breakdown == nil {
		breakdown = []summary.ProjectBreakdown{}
	}
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return summary.MonthlySummary{}, fmt.Errorf("failed to encode project breakdown: %w", err)
	}

	var paymentType *string
	if s.PaymentType != nil {
		pt := string(*s.PaymentType)
		paymentType = &pt
	}

	// The WHERE on the conflict branch keeps APPROVED rows untouched even if
	// they were approved after the caller's guard check.
	query := `
		INSERT INTO monthly_summaries AS ms (
			employee_id, period_month, period_year, total_working_days,
			total_worked_hours, total_ot_hours, approved_leaves, absent_days,
			project_breakdown, payment_type, subtotal, tax_percentage, tax_amount,
			total_amount, invoice_number, invoice_seq, status
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, 'DRAFT'
		)
		ON CONFLICT ON CONSTRAINT ` + summaryEmployeePeriodUniqKey + ` DO UPDATE SET
			total_working_days = EXCLUDED.total_working_days,
			total_worked_hours = EXCLUDED.total_worked_hours,
			total_ot_hours = EXCLUDED.total_ot_hours,
			approved_leaves = EXCLUDED.approved_leaves,
			absent_days = EXCLUDED.absent_days,
			project_breakdown = EXCLUDED.project_breakdown,
			payment_type = EXCLUDED.payment_type,
			subtotal = EXCLUDED.subtotal,
			tax_percentage = EXCLUDED.tax_percentage,
			tax_amount = EXCLUDED.tax_amount,
			total_amount = EXCLUDED.total_amount,
			invoice_number = EXCLUDED.invoice_number,
			invoice_seq = EXCLUDED.invoice_seq,
			status = 'DRAFT',
			updated_at = NOW()
		WHERE ms.status <> 'APPROVED'
		RETURNING ` + summaryColumns

	saved, err := scanSummary(q.QueryRow(ctx, query,
		s.EmployeeID, s.PeriodMonth, s.PeriodYear, s.TotalWorkingDays,
		s.TotalWorkedHours, s.TotalOTHours, s.ApprovedLeaves, s.AbsentDays,
		breakdownJSON, paymentType, s.Subtotal, s.TaxPercentage, s.TaxAmount,
		s.TotalAmount, s.InvoiceNumber, s.InvoiceSeq,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary.MonthlySummary{}, summary.ErrApprovedLocked
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == invoiceNumberConstraint {
			return summary.MonthlySummary{}, fmt.Errorf("%w: %s", summary.ErrSequenceConflict, pgErr.Detail)
		}
		return summary.MonthlySummary{}, fmt.Errorf("failed to upsert monthly summary: %w", err)
	}
	saved.EmployeeName = s.EmployeeName
	return saved, nil
}

// List implements summary.SummaryRepository.
func (r *summaryRepositoryImpl) List(ctx context.Context, filter summary.SummaryFilter) ([]summary.MonthlySummary, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM monthly_summaries ms
		JOIN employees e ON e.id = ms.employee_id
		WHERE 1 = 1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil {
		baseQuery += fmt.Sprintf(" AND ms.period_month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND ms.period_year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND ms.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND ms.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count monthly summaries: %w", err)
	}

	filter.ApplyDefaults()

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name
		%s
		ORDER BY ms.period_year DESC, ms.period_month DESC, e.full_name, ms.id
		LIMIT $%d OFFSET $%d
	`, summaryColumns, baseQuery, argIdx, argIdx+1)

	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list monthly summaries: %w", err)
	}
	defer rows.Close()

	var summaries []summary.MonthlySummary
	for rows.Next() {
		var employeeName *string
		s, err := scanSummary(rows, &employeeName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan monthly summary: %w", err)
		}
		s.EmployeeName = employeeName
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate monthly summaries: %w", err)
	}

	return summaries, totalCount, nil
}
