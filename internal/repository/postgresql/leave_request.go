package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/sitecrew/workforce-backend-go/internal/domain/leave"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListOverlapping(ctx context.Context, employeeID string, status leave.LeaveRequestStatus, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	// Interval overlap, not containment: a request spanning a month boundary
	// counts toward both months.
	query := `
		SELECT id, employee_id, start_date, end_date, status, number_of_days, created_at, updated_at
		FROM leave_requests
		WHERE employee_id = $1
		  AND status = $2
		  AND start_date <= $4::date
		  AND end_date >= $3::date
		ORDER BY start_date, id
	`

	rows, err := q.Query(ctx, query, employeeID, string(status), from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var lr leave.LeaveRequest
		var st string
		if err := rows.Scan(&lr.ID, &lr.EmployeeID, &lr.StartDate, &lr.EndDate, &st, &lr.NumberOfDays, &lr.CreatedAt, &lr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		lr.Status = leave.LeaveRequestStatus(st)
		requests = append(requests, lr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}
