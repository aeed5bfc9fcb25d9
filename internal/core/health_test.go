package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"medstock-agent/internal/core"
)

func TestDaysRemaining(t *testing.T) {
	tests := []struct {
		name  string
		stock int64
		avg   string
		want  string
	}{
		{name: "normal division", stock: 100, avg: "20", want: "5"},
		{name: "fractional result", stock: 100, avg: "30", want: "3.3333333333333333"},
		{name: "zero usage gets sentinel", stock: 100, avg: "0", want: "999"},
		{name: "zero stock zero usage", stock: 0, avg: "0", want: "999"},
		{name: "zero stock with usage", stock: 0, avg: "10", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg := decimal.RequireFromString(tt.avg)
			got := core.DaysRemaining(tt.stock, avg)
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("DaysRemaining(%d, %s) = %s, want %s", tt.stock, tt.avg, got, tt.want)
			}
		})
	}
}

func TestClassifyHealth(t *testing.T) {
	tests := []struct {
		name string
		days string
		want core.HealthStatus
	}{
		{name: "well below floor", days: "0", want: core.StatusCritical},
		{name: "just below floor", days: "2.99", want: core.StatusCritical},
		{name: "exactly three days", days: "3", want: core.StatusWarning},
		{name: "middle of warning band", days: "5", want: core.StatusWarning},
		{name: "exactly seven days", days: "7", want: core.StatusWarning},
		{name: "just above ceiling", days: "7.01", want: core.StatusHealthy},
		{name: "unlimited sentinel", days: "999", want: core.StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ClassifyHealth(decimal.RequireFromString(tt.days))
			if got != tt.want {
				t.Errorf("ClassifyHealth(%s) = %s, want %s", tt.days, got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("ClassifyHealth(%s) returned invalid status %q", tt.days, got)
			}
		})
	}
}

func TestDaysRemaining_MonotonicInUsage(t *testing.T) {
	// More usage must never mean more days of stock.
	stock := int64(500)
	prev := core.DaysRemaining(stock, decimal.RequireFromString("1"))
	for _, avg := range []string{"2", "5", "10", "50", "250"} {
		cur := core.DaysRemaining(stock, decimal.RequireFromString(avg))
		if cur.GreaterThan(prev) {
			t.Fatalf("days remaining rose from %s to %s as usage increased to %s", prev, cur, avg)
		}
		prev = cur
	}
}
