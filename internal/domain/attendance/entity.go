package attendance

import "time"

// Attendance is one check-in event. Rows are keyed by the login identity
// (user_id), not by the employee record.
type Attendance struct {
	ID           string
	UserID       string
	CheckInTime  time.Time
	CheckOutTime *time.Time
	CreatedAt    time.Time
}

// CheckInDate returns the UTC calendar date of the check-in.
func (a Attendance) CheckInDate() time.Time {
	t := a.CheckInTime.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
