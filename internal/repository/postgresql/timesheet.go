package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/sitecrew/workforce-backend-go/internal/domain/timesheet"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
)

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

// ListByEmployeeInRange implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) ListByEmployeeInRange(ctx context.Context, employeeID string, from, to time.Time, statuses []timesheet.ApprovalStatus) ([]timesheet.Timesheet, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	statusArgs := make([]string, len(statuses))
	for i, s := range statuses {
		statusArgs[i] = string(s)
	}

	query := `
		SELECT id, employee_id, work_date, total_hours, overtime_hours, approval_status, project_id,
			created_at, updated_at
		FROM timesheets
		WHERE employee_id = $1
		  AND work_date BETWEEN $2::date AND $3::date
		  AND approval_status = ANY($4)
		  AND deleted_at IS NULL
		ORDER BY work_date, id
	`

	rows, err := q.Query(ctx, query, employeeID, from.Format(time.DateOnly), to.Format(time.DateOnly), statusArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	var sheets []timesheet.Timesheet
	for rows.Next() {
		var ts timesheet.Timesheet
		var status string
		err := rows.Scan(
			&ts.ID, &ts.EmployeeID, &ts.WorkDate, &ts.TotalHours, &ts.OvertimeHours, &status, &ts.ProjectID,
			&ts.CreatedAt, &ts.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		ts.ApprovalStatus = timesheet.ApprovalStatus(status)
		sheets = append(sheets, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timesheets: %w", err)
	}

	return sheets, nil
}
