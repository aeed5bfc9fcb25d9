package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TrendPoint is the total issued quantity across matching pairs on one date.
type TrendPoint struct {
	Date        string
	TotalIssued int64
}

// TrendReport summarizes consumption over a trailing window of calendar days.
type TrendReport struct {
	Days        int
	ItemFilter  string
	LocFilter   string
	Points      []TrendPoint
	TotalIssued int64
	AvgPerDay   decimal.Decimal
	PeakDate    string
	PeakIssued  int64
}

// Overview is a coarse census of the ledger.
type Overview struct {
	Locations    int64
	Items        int64
	Transactions int64
	FirstDate    string
	LastDate     string
}

// AnalyticsService derives stock health from the ledger. All reads recompute
// from committed transactions; nothing here is cached or persisted.
type AnalyticsService interface {
	// ListHealth returns one row per (location, item) pair that has at least
	// one transaction, anchored on the pair's most recent row. Filters are
	// optional. No data yields an empty slice, not an error.
	ListHealth(ctx context.Context, locationID, itemID *int64) ([]StockHealth, error)

	// ListAlerts returns the WARNING and CRITICAL subset of ListHealth,
	// sorted by days remaining ascending, each row enriched with a suggested
	// reorder quantity. severity narrows to one status when non-empty.
	ListAlerts(ctx context.Context, severity HealthStatus) ([]Alert, error)

	// GetSummary rolls the full health table up into distributions and the
	// top critical items ordered by shortage.
	GetSummary(ctx context.Context) (*Summary, error)

	// GetHeatmap arranges the full health table into the location-by-item
	// status matrix.
	GetHeatmap(ctx context.Context) (*Heatmap, error)

	// ConsumptionTrends reports daily issued totals over the last N calendar
	// days. days outside 1..90 defaults to 14. Filters match by substring on
	// item and location name.
	ConsumptionTrends(ctx context.Context, itemFilter, locFilter string, days int) (*TrendReport, error)

	// Overview reports ledger-wide counts and the covered date range.
	Overview(ctx context.Context) (*Overview, error)
}

type analytics struct {
	pool         *pgxpool.Pool
	safetyFactor decimal.Decimal
}

// NewAnalytics constructs an AnalyticsService. safetyFactor scales reorder
// suggestions and must be greater than 1.
func NewAnalytics(pool *pgxpool.Pool, safetyFactor decimal.Decimal) AnalyticsService {
	return &analytics{pool: pool, safetyFactor: safetyFactor}
}

// healthWindowQuery fetches, for every matching pair, the trailing usage
// window plus the pair's latest closing stock. ROW_NUMBER over the
// (location_id, item_id, date) index keeps this a single ordered scan.
const healthWindowQuery = `
	SELECT w.location_id, w.item_id, l.name, l.type, i.name, i.category, i.unit,
	       i.lead_time_days, i.min_stock, w.issued, w.closing_stock, w.date::text, w.rn
	FROM (
		SELECT location_id, item_id, issued, closing_stock, date,
		       ROW_NUMBER() OVER (PARTITION BY location_id, item_id ORDER BY date DESC) AS rn
		FROM stock_transactions
	) w
	JOIN locations l ON l.id = w.location_id
	JOIN items i     ON i.id = w.item_id
	WHERE w.rn <= $1
	  AND ($2::bigint IS NULL OR w.location_id = $2)
	  AND ($3::bigint IS NULL OR w.item_id = $3)
	ORDER BY w.location_id, w.item_id, w.rn
`

func (a *analytics) ListHealth(ctx context.Context, locationID, itemID *int64) ([]StockHealth, error) {
	rows, err := a.pool.Query(ctx, healthWindowQuery, UsageWindow, locationID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock health window: %w", err)
	}
	defer rows.Close()

	var out []StockHealth
	var cur *StockHealth
	var issuedWindow []int64

	flush := func() {
		if cur == nil {
			return
		}
		cur.AvgDailyUsage = AverageDailyUsage(issuedWindow)
		cur.DaysRemaining = DaysRemaining(cur.CurrentStock, cur.AvgDailyUsage)
		cur.Status = ClassifyHealth(cur.DaysRemaining)
		out = append(out, *cur)
	}

	for rows.Next() {
		var (
			h             StockHealth
			issued, stock int64
			date          string
			rn            int64
		)
		if err := rows.Scan(
			&h.LocationID, &h.ItemID, &h.LocationName, &h.LocationType, &h.ItemName,
			&h.Category, &h.Unit, &h.LeadTimeDays, &h.MinStock, &issued, &stock, &date, &rn,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock health row: %w", err)
		}

		if rn == 1 {
			flush()
			h.CurrentStock = stock
			h.LastUpdated = date
			cur = &h
			issuedWindow = issuedWindow[:0]
		}
		issuedWindow = append(issuedWindow, issued)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stock health rows: %w", err)
	}
	flush()

	if out == nil {
		out = []StockHealth{}
	}
	return out, nil
}

func (a *analytics) ListAlerts(ctx context.Context, severity HealthStatus) ([]Alert, error) {
	if severity != "" && severity != StatusCritical && severity != StatusWarning {
		return nil, &ValidationError{Field: "severity", Reason: fmt.Sprintf("%q is not an alert severity", severity)}
	}

	health, err := a.ListHealth(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	alerts := []Alert{}
	for _, h := range health {
		if h.Status == StatusHealthy {
			continue
		}
		if severity != "" && h.Status != severity {
			continue
		}
		alerts = append(alerts, Alert{
			StockHealth:         h,
			SuggestedReorderQty: ReorderQuantity(h.AvgDailyUsage, h.LeadTimeDays, a.safetyFactor, h.CurrentStock),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysRemaining.LessThan(alerts[j].DaysRemaining)
	})
	return alerts, nil
}

func (a *analytics) GetSummary(ctx context.Context) (*Summary, error) {
	health, err := a.ListHealth(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return Summarize(health), nil
}

func (a *analytics) GetHeatmap(ctx context.Context) (*Heatmap, error) {
	health, err := a.ListHealth(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return BuildHeatmap(health), nil
}

// likeEscaper neutralizes LIKE metacharacters so user-supplied filters match
// their text literally instead of acting as patterns.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (a *analytics) ConsumptionTrends(ctx context.Context, itemFilter, locFilter string, days int) (*TrendReport, error) {
	if days < 1 || days > 90 {
		days = 14
	}

	rows, err := a.pool.Query(ctx, `
		SELECT t.date::text, COALESCE(SUM(t.issued), 0)
		FROM stock_transactions t
		JOIN locations l ON l.id = t.location_id
		JOIN items i     ON i.id = t.item_id
		WHERE t.date > CURRENT_DATE - $1::int
		  AND ($2 = '' OR i.name ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR l.name ILIKE '%' || $3 || '%')
		GROUP BY t.date
		ORDER BY t.date
	`, days, likeEscaper.Replace(itemFilter), likeEscaper.Replace(locFilter))
	if err != nil {
		return nil, fmt.Errorf("failed to query consumption trends: %w", err)
	}
	defer rows.Close()

	report := &TrendReport{Days: days, ItemFilter: itemFilter, LocFilter: locFilter, Points: []TrendPoint{}}
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.TotalIssued); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		report.Points = append(report.Points, p)
		report.TotalIssued += p.TotalIssued
		if p.TotalIssued > report.PeakIssued {
			report.PeakIssued = p.TotalIssued
			report.PeakDate = p.Date
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trend rows: %w", err)
	}

	if len(report.Points) > 0 {
		report.AvgPerDay = decimal.NewFromInt(report.TotalIssued).
			Div(decimal.NewFromInt(int64(len(report.Points)))).Round(2)
	}
	return report, nil
}

func (a *analytics) Overview(ctx context.Context) (*Overview, error) {
	var o Overview
	var first, last *string
	err := a.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM locations),
		       (SELECT COUNT(*) FROM items),
		       (SELECT COUNT(*) FROM stock_transactions),
		       (SELECT MIN(date)::text FROM stock_transactions),
		       (SELECT MAX(date)::text FROM stock_transactions)
	`).Scan(&o.Locations, &o.Items, &o.Transactions, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger overview: %w", err)
	}
	if first != nil {
		o.FirstDate = *first
	}
	if last != nil {
		o.LastDate = *last
	}
	return &o, nil
}
