package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/sitecrew/workforce-backend-go/internal/domain/attendance"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// CountDistinctCheckInDays implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CountDistinctCheckInDays(ctx context.Context, userID string, from, to time.Time) (int, error) {
	if !from.Before(to) {
		return 0, attendance.ErrInvalidRange
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(DISTINCT (check_in_time AT TIME ZONE 'UTC')::date)
		FROM attendances
		WHERE user_id = $1
		  AND check_in_time >= $2
		  AND check_in_time < $3
	`

	var days int
	if err := q.QueryRow(ctx, query, userID, from, to).Scan(&days); err != nil {
		return 0, fmt.Errorf("failed to count attendance days: %w", err)
	}
	return days, nil
}
