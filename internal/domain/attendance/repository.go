package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is read-only from the payroll side; check-ins are written
// by the mobile flow.
type AttendanceRepository interface {
	// CountDistinctCheckInDays counts UTC calendar dates with at least one
	// check-in in [from, to).
	CountDistinctCheckInDays(ctx context.Context, userID string, from, to time.Time) (int, error)
}
