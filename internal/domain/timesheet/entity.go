package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalStatusDraft     ApprovalStatus = "Draft"
	ApprovalStatusSubmitted ApprovalStatus = "Submitted"
	ApprovalStatusApproved  ApprovalStatus = "Approved"
)

// CountedStatuses are the approval states included in monthly hour totals.
// Draft and submitted entries count so totals match the timesheet listing.
var CountedStatuses = []ApprovalStatus{
	ApprovalStatusDraft,
	ApprovalStatusSubmitted,
	ApprovalStatusApproved,
}

// Timesheet is one employee's hours for a single work date.
type Timesheet struct {
	ID             string
	EmployeeID     string
	WorkDate       time.Time
	TotalHours     decimal.Decimal
	OvertimeHours  decimal.Decimal
	ApprovalStatus ApprovalStatus
	ProjectID      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
