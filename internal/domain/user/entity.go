package user

import "time"

// User is a login identity. Attendance check-ins are recorded against it.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
