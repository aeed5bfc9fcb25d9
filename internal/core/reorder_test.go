package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"medstock-agent/internal/core"
)

func TestReorderQuantity(t *testing.T) {
	tests := []struct {
		name   string
		avg    string
		lead   int
		safety string
		stock  int64
		want   int64
	}{
		{name: "covers lead time with margin", avg: "10", lead: 5, safety: "1.5", stock: 15, want: 60},
		{name: "default safety factor", avg: "10", lead: 7, safety: "2", stock: 50, want: 90},
		{name: "zero usage orders nothing", avg: "0", lead: 14, safety: "2", stock: 0, want: 0},
		{name: "already overstocked", avg: "5", lead: 3, safety: "2", stock: 1000, want: 0},
		{name: "exactly covered", avg: "10", lead: 5, safety: "2", stock: 100, want: 0},
		{name: "fractional target truncates", avg: "3.5", lead: 3, safety: "1.5", stock: 10, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg := decimal.RequireFromString(tt.avg)
			safety := decimal.RequireFromString(tt.safety)
			got := core.ReorderQuantity(avg, tt.lead, safety, tt.stock)
			if got != tt.want {
				t.Errorf("ReorderQuantity(%s, %d, %s, %d) = %d, want %d",
					tt.avg, tt.lead, tt.safety, tt.stock, got, tt.want)
			}
			if got < 0 {
				t.Errorf("reorder quantity must never be negative, got %d", got)
			}
		})
	}
}
