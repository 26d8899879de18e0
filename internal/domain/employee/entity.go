package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	UserID       *string
	Email        *string
	FullName     string
	PaymentType  PaymentType
	HourlyRate   *decimal.Decimal
	DailyRate    *decimal.Decimal
	MonthlyRate  *decimal.Decimal
	ContractRate *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type PaymentType string

const (
	PaymentTypeHourly   PaymentType = "hourly"
	PaymentTypeDaily    PaymentType = "daily"
	PaymentTypeMonthly  PaymentType = "monthly"
	PaymentTypeContract PaymentType = "contract"
)

// IsValid reports whether p is one of the known payment types.
func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentTypeHourly, PaymentTypeDaily, PaymentTypeMonthly, PaymentTypeContract:
		return true
	}
	return false
}

// Rate returns the rate field matching the employee's payment type, or nil
// when the type is unknown or the matching rate is not configured.
func (e Employee) Rate() *decimal.Decimal {
	switch e.PaymentType {
	case PaymentTypeHourly:
		return e.HourlyRate
	case PaymentTypeDaily:
		return e.DailyRate
	case PaymentTypeMonthly:
		return e.MonthlyRate
	case PaymentTypeContract:
		return e.ContractRate
	default:
		return nil
	}
}
