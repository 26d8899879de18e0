package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - read access to leave_requests
type LeaveRequestRepository interface {
	// ListOverlapping returns requests with the given status whose
	// [start_date, end_date] intersects [from, to].
	ListOverlapping(ctx context.Context, employeeID string, status LeaveRequestStatus, from, to time.Time) ([]LeaveRequest, error)
}
