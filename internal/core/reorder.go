package core

import "github.com/shopspring/decimal"

// DefaultSafetyFactor is the reorder buffer multiplier used when the
// configuration does not override it.
const DefaultSafetyFactor = 2.0

// ReorderQuantity suggests how many units to order to cover lead-time demand
// plus a safety buffer:
//
//	max(0, avg_usage × lead_time_days × safety_factor − current_stock)
//
// Zero usage means no evidence of demand, so the suggestion is zero. The
// fractional part of the target is truncated; the result is never negative.
func ReorderQuantity(avgUsage decimal.Decimal, leadTimeDays int, safetyFactor decimal.Decimal, currentStock int64) int64 {
	if avgUsage.Sign() <= 0 {
		return 0
	}
	target := avgUsage.
		Mul(decimal.NewFromInt(int64(leadTimeDays))).
		Mul(safetyFactor)
	qty := target.Sub(decimal.NewFromInt(currentStock)).IntPart()
	if qty < 0 {
		return 0
	}
	return qty
}
