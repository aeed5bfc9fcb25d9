package core_test

import (
	"testing"

	"medstock-agent/internal/core"
)

func TestAverageDailyUsage(t *testing.T) {
	tests := []struct {
		name   string
		issued []int64
		want   string
	}{
		{name: "empty history", issued: nil, want: "0"},
		{name: "single transaction", issued: []int64{12}, want: "12"},
		{name: "full window", issued: []int64{10, 20, 30, 40, 50, 60, 70}, want: "40"},
		{name: "short history", issued: []int64{5, 10}, want: "7.5"},
		{name: "zero usage days included", issued: []int64{0, 0, 30}, want: "10"},
		{name: "non-integer mean", issued: []int64{1, 2}, want: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.AverageDailyUsage(tt.issued)
			if got.String() != tt.want {
				t.Errorf("AverageDailyUsage(%v) = %s, want %s", tt.issued, got, tt.want)
			}
		})
	}
}
