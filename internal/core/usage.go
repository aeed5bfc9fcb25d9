package core

import "github.com/shopspring/decimal"

// UsageWindow is the number of most recent transactions averaged to estimate
// daily consumption. Row-count semantics: if a location skips a day, the
// window spans more than 7 calendar days.
const UsageWindow = 7

// AverageDailyUsage returns the mean issued quantity over the supplied
// trailing window. The slice holds the issued values of up to UsageWindow
// most recent transactions; fewer rows simply shrink the window. An empty
// window yields zero, never an error.
func AverageDailyUsage(issued []int64) decimal.Decimal {
	if len(issued) == 0 {
		return decimal.Zero
	}
	var sum int64
	for _, q := range issued {
		sum += q
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(issued))))
}
