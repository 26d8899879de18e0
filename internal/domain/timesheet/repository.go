package timesheet

import (
	"context"
	"time"
)

type TimesheetRepository interface {
	// ListByEmployeeInRange returns non-deleted timesheets whose work_date is in
	// [from, to] and whose approval status is one of statuses, ordered by work_date.
	ListByEmployeeInRange(ctx context.Context, employeeID string, from, to time.Time, statuses []ApprovalStatus) ([]Timesheet, error)
}
