package core_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"medstock-agent/internal/core"
)

func TestAnalytics_HealthClassification(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	analytics := core.NewAnalytics(pool, decimal.NewFromFloat(2.0))
	ctx := context.Background()

	// Healthy pair: large stock, modest usage.
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-01",
		Issued: 10, OpeningOverride: seedOpening(1000), EnteredBy: "ward-a",
	})
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-02", Issued: 20, EnteredBy: "ward-a",
	})
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-03", Issued: 30, EnteredBy: "ward-a",
	})

	// Critical pair: 40 units left, burning 30 a day.
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 2, ItemID: 1, Date: "2026-08-01",
		Issued: 30, OpeningOverride: seedOpening(100), EnteredBy: "phc-jaipur",
	})
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 2, ItemID: 1, Date: "2026-08-02", Issued: 30, EnteredBy: "phc-jaipur",
	})

	health, err := analytics.ListHealth(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListHealth failed: %v", err)
	}
	if len(health) != 2 {
		t.Fatalf("expected 2 pairs with history, got %d", len(health))
	}

	byLoc := map[int64]core.StockHealth{}
	for _, h := range health {
		byLoc[h.LocationID] = h
	}

	healthy := byLoc[1]
	if healthy.CurrentStock != 940 {
		t.Errorf("expected current stock 940, got %d", healthy.CurrentStock)
	}
	if !healthy.AvgDailyUsage.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected avg usage 20, got %s", healthy.AvgDailyUsage)
	}
	if healthy.Status != core.StatusHealthy {
		t.Errorf("expected HEALTHY, got %s", healthy.Status)
	}
	if healthy.LastUpdated != "2026-08-03" {
		t.Errorf("expected anchor date 2026-08-03, got %s", healthy.LastUpdated)
	}

	critical := byLoc[2]
	if critical.CurrentStock != 40 {
		t.Errorf("expected current stock 40, got %d", critical.CurrentStock)
	}
	if critical.Status != core.StatusCritical {
		t.Errorf("expected CRITICAL at ~1.3 days, got %s (days %s)", critical.Status, critical.DaysRemaining)
	}
}

func TestAnalytics_UsageWindowCap(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	analytics := core.NewAnalytics(pool, decimal.NewFromFloat(2.0))
	ctx := context.Background()

	// Three noisy early days, then seven steady days. Only the most recent
	// seven transactions may feed the average.
	issued := []int64{100, 100, 100, 7, 7, 7, 7, 7, 7, 7}
	for i, qty := range issued {
		in := core.AddTransactionInput{
			LocationID: 2, ItemID: 2,
			Date:      fmt.Sprintf("2026-08-%02d", i+1),
			Issued:    qty,
			EnteredBy: "phc-jaipur",
		}
		if i == 0 {
			in.OpeningOverride = seedOpening(5000)
		}
		mustAdd(t, ledger, in)
	}

	locID := int64(2)
	itemID := int64(2)
	health, err := analytics.ListHealth(ctx, &locID, &itemID)
	if err != nil {
		t.Fatalf("ListHealth failed: %v", err)
	}
	if len(health) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(health))
	}
	if !health[0].AvgDailyUsage.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected windowed avg 7, got %s", health[0].AvgDailyUsage)
	}
}

func TestAnalytics_AlertsEnrichment(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	analytics := core.NewAnalytics(pool, decimal.NewFromFloat(1.5))
	ctx := context.Background()

	// Item 1 has a 5 day lead time. 15 units at 10/day is 1.5 days: CRITICAL,
	// and the reorder target is 10 * 5 * 1.5 - 15 = 60.
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-01",
		Issued: 10, OpeningOverride: seedOpening(25), EnteredBy: "ward-a",
	})

	alerts, err := analytics.ListAlerts(ctx, "")
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Status != core.StatusCritical {
		t.Errorf("expected CRITICAL, got %s", a.Status)
	}
	if a.SuggestedReorderQty != 60 {
		t.Errorf("expected suggested reorder 60, got %d", a.SuggestedReorderQty)
	}

	// Severity filter excludes non-matching rows.
	warnings, err := analytics.ListAlerts(ctx, core.StatusWarning)
	if err != nil {
		t.Fatalf("ListAlerts(WARNING) failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no WARNING alerts, got %d", len(warnings))
	}

	if _, err := analytics.ListAlerts(ctx, core.HealthStatus("SEVERE")); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestAnalytics_SummaryAndOverview(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	analytics := core.NewAnalytics(pool, decimal.NewFromFloat(2.0))
	ctx := context.Background()

	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-01",
		Issued: 10, OpeningOverride: seedOpening(1000), EnteredBy: "ward-a",
	})
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 2, ItemID: 1, Date: "2026-08-01",
		Issued: 30, OpeningOverride: seedOpening(60), EnteredBy: "phc-jaipur",
	})

	summary, err := analytics.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if summary.StatusDistribution[core.StatusHealthy] != 1 ||
		summary.StatusDistribution[core.StatusCritical] != 1 {
		t.Errorf("unexpected status distribution: %v", summary.StatusDistribution)
	}
	if summary.CategoryDistribution["painkiller"] != 1 {
		t.Errorf("expected 1 distinct painkiller, got %v", summary.CategoryDistribution)
	}
	if len(summary.TopCriticalItems) != 1 || summary.TopCriticalItems[0].Shortage != 70 {
		t.Errorf("unexpected top critical view: %+v", summary.TopCriticalItems)
	}

	overview, err := analytics.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if overview.Locations != 2 || overview.Items != 3 || overview.Transactions != 2 {
		t.Errorf("unexpected overview counts: %+v", overview)
	}
	if overview.FirstDate != "2026-08-01" || overview.LastDate != "2026-08-01" {
		t.Errorf("unexpected date range: %s to %s", overview.FirstDate, overview.LastDate)
	}

	heatmap, err := analytics.GetHeatmap(ctx)
	if err != nil {
		t.Fatalf("GetHeatmap failed: %v", err)
	}
	if len(heatmap.Items) != 1 || heatmap.Items[0] != "Paracetamol 500mg" {
		t.Errorf("unexpected heatmap columns: %v", heatmap.Items)
	}
	if len(heatmap.Rows) != 2 {
		t.Fatalf("expected 2 heatmap rows, got %d", len(heatmap.Rows))
	}
	// Rows sorted by location name: Apollo (healthy) before the PHC (critical).
	if heatmap.Rows[0].LocationName != "Apollo Hospital - Mumbai" ||
		heatmap.Rows[0].Cells[0].Status != core.StatusHealthy {
		t.Errorf("unexpected first heatmap row: %+v", heatmap.Rows[0])
	}
	if heatmap.Rows[1].Cells[0].Status != core.StatusCritical {
		t.Errorf("expected critical cell at the PHC, got %+v", heatmap.Rows[1].Cells[0])
	}
}

func TestAnalytics_EmptyLedger(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	analytics := core.NewAnalytics(pool, decimal.NewFromFloat(2.0))
	ctx := context.Background()

	health, err := analytics.ListHealth(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListHealth failed: %v", err)
	}
	if len(health) != 0 {
		t.Errorf("expected empty health list, got %d rows", len(health))
	}

	summary, err := analytics.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if summary.StatusDistribution[core.StatusCritical] != 0 {
		t.Errorf("expected empty distribution, got %v", summary.StatusDistribution)
	}
}

func TestAnalytics_ConsumptionTrends(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	analytics := core.NewAnalytics(pool, decimal.NewFromFloat(2.0))
	ctx := context.Background()

	// Trends window is anchored on today, so seed recent dates.
	day1 := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	day2 := time.Now().AddDate(0, 0, -2).Format("2006-01-02")

	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: day1,
		Issued: 40, OpeningOverride: seedOpening(500), EnteredBy: "ward-a",
	})
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: day2, Issued: 10, EnteredBy: "ward-a",
	})

	report, err := analytics.ConsumptionTrends(ctx, "", "", 14)
	if err != nil {
		t.Fatalf("ConsumptionTrends failed: %v", err)
	}
	if report.TotalIssued != 50 {
		t.Errorf("expected total issued 50, got %d", report.TotalIssued)
	}
	if report.PeakDate != day1 || report.PeakIssued != 40 {
		t.Errorf("expected peak %s/40, got %s/%d", day1, report.PeakDate, report.PeakIssued)
	}
	if !report.AvgPerDay.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected avg 25 per active day, got %s", report.AvgPerDay)
	}

	// Filters narrow by name substring.
	filtered, err := analytics.ConsumptionTrends(ctx, "Paracetamol", "Apollo", 14)
	if err != nil {
		t.Fatalf("filtered trends failed: %v", err)
	}
	if filtered.TotalIssued != 50 {
		t.Errorf("expected filtered total 50, got %d", filtered.TotalIssued)
	}
	none, err := analytics.ConsumptionTrends(ctx, "Insulin", "", 14)
	if err != nil {
		t.Fatalf("no-match trends failed: %v", err)
	}
	if none.TotalIssued != 0 || len(none.Points) != 0 {
		t.Errorf("expected empty report for unmatched filter, got %+v", none)
	}

	// LIKE metacharacters in filters are literal text, not wildcards.
	for _, filter := range []string{"%", "_aracetamol"} {
		wild, err := analytics.ConsumptionTrends(ctx, filter, "", 14)
		if err != nil {
			t.Fatalf("trends with filter %q failed: %v", filter, err)
		}
		if len(wild.Points) != 0 {
			t.Errorf("expected filter %q to match nothing, got %d points", filter, len(wild.Points))
		}
	}
}
