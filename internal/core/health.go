package core

import "github.com/shopspring/decimal"

// DaysRemainingUnlimited is the sentinel days-remaining value reported when
// there is no measured consumption: the stock is effectively unlimited.
var DaysRemainingUnlimited = decimal.NewFromInt(999)

var (
	warningFloor   = decimal.NewFromInt(3)
	warningCeiling = decimal.NewFromInt(7)
)

// DaysRemaining estimates how many days the current stock lasts at the given
// average daily usage. Zero usage maps to the 999 sentinel regardless of the
// stock on hand.
func DaysRemaining(currentStock int64, avgUsage decimal.Decimal) decimal.Decimal {
	if avgUsage.Sign() <= 0 {
		return DaysRemainingUnlimited
	}
	return decimal.NewFromInt(currentStock).Div(avgUsage)
}

// ClassifyHealth maps a days-remaining estimate to a status. Boundaries are
// inclusive on the WARNING side: exactly 3 and exactly 7 days are WARNING.
func ClassifyHealth(daysRemaining decimal.Decimal) HealthStatus {
	switch {
	case daysRemaining.LessThan(warningFloor):
		return StatusCritical
	case daysRemaining.LessThanOrEqual(warningCeiling):
		return StatusWarning
	default:
		return StatusHealthy
	}
}
