package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

// LeaveRequest covers the date range [StartDate, EndDate], both inclusive.
type LeaveRequest struct {
	ID           string
	EmployeeID   string
	StartDate    time.Time
	EndDate      time.Time
	Status       LeaveRequestStatus
	NumberOfDays decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Overlaps reports whether the request intersects the date range [from, to]
// at all. Partial overlap counts.
func (r LeaveRequest) Overlaps(from, to time.Time) bool {
	return !r.StartDate.After(to) && !r.EndDate.Before(from)
}
