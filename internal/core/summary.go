package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LocationStock is the total current closing stock held at one location.
type LocationStock struct {
	LocationID   int64  `json:"location_id"`
	LocationName string `json:"location_name"`
	TotalStock   int64  `json:"total_stock"`
}

// CriticalItem is one row of the top-critical view: a CRITICAL pair with its
// shortage against the item's minimum stock threshold.
type CriticalItem struct {
	LocationID   int64  `json:"location_id"`
	ItemID       int64  `json:"item_id"`
	LocationName string `json:"location_name"`
	ItemName     string `json:"item_name"`
	CurrentStock int64  `json:"current_stock"`
	MinStock     int64  `json:"min_stock"`
	Shortage     int64  `json:"shortage"`
}

// Summary rolls the latest-per-pair health records up into the dashboard views.
type Summary struct {
	StatusDistribution        map[HealthStatus]int `json:"status_distribution"`
	CategoryDistribution      map[string]int       `json:"category_distribution"`
	LocationStockDistribution []LocationStock      `json:"location_stock_distribution"`
	TopCriticalItems          []CriticalItem       `json:"top_critical_items"`
}

// Summarize builds the three distributions and the top-critical view from a
// set of latest-per-pair health records. Pure: no storage access, no side
// effects.
//
// Category counts are distinct items per category, not transaction volume.
// Top critical items are ordered by shortage (min_stock − current_stock)
// descending, ties broken by item name ascending.
func Summarize(records []StockHealth) *Summary {
	s := &Summary{
		StatusDistribution:   map[HealthStatus]int{StatusCritical: 0, StatusWarning: 0, StatusHealthy: 0},
		CategoryDistribution: map[string]int{},
	}

	seenItems := map[int64]bool{}
	locTotals := map[int64]*LocationStock{}
	var locOrder []int64

	for _, r := range records {
		s.StatusDistribution[r.Status]++

		if !seenItems[r.ItemID] {
			seenItems[r.ItemID] = true
			s.CategoryDistribution[r.Category]++
		}

		ls, ok := locTotals[r.LocationID]
		if !ok {
			ls = &LocationStock{LocationID: r.LocationID, LocationName: r.LocationName}
			locTotals[r.LocationID] = ls
			locOrder = append(locOrder, r.LocationID)
		}
		ls.TotalStock += r.CurrentStock

		if r.Status == StatusCritical {
			s.TopCriticalItems = append(s.TopCriticalItems, CriticalItem{
				LocationID:   r.LocationID,
				ItemID:       r.ItemID,
				LocationName: r.LocationName,
				ItemName:     r.ItemName,
				CurrentStock: r.CurrentStock,
				MinStock:     r.MinStock,
				Shortage:     r.MinStock - r.CurrentStock,
			})
		}
	}

	for _, id := range locOrder {
		s.LocationStockDistribution = append(s.LocationStockDistribution, *locTotals[id])
	}
	sort.Slice(s.LocationStockDistribution, func(i, j int) bool {
		return s.LocationStockDistribution[i].LocationName < s.LocationStockDistribution[j].LocationName
	})

	sort.Slice(s.TopCriticalItems, func(i, j int) bool {
		a, b := s.TopCriticalItems[i], s.TopCriticalItems[j]
		if a.Shortage != b.Shortage {
			return a.Shortage > b.Shortage
		}
		return a.ItemName < b.ItemName
	})

	return s
}

// HeatmapCell is one pair's status inside a location row of the matrix.
type HeatmapCell struct {
	ItemID        int64           `json:"item_id"`
	ItemName      string          `json:"item_name"`
	Status        HealthStatus    `json:"status"`
	DaysRemaining decimal.Decimal `json:"days_remaining"`
}

// HeatmapRow holds one location's cells, item name ascending.
type HeatmapRow struct {
	LocationID   int64         `json:"location_id"`
	LocationName string        `json:"location_name"`
	Cells        []HeatmapCell `json:"cells"`
}

// Heatmap is the location-by-item status matrix behind the dashboard grid.
// Items lists every item name that appears anywhere in the matrix, sorted,
// for column headers; rows may be sparse since pairs without history have
// no cell.
type Heatmap struct {
	Items []string     `json:"items"`
	Rows  []HeatmapRow `json:"rows"`
}

// BuildHeatmap arranges latest-per-pair health records into the matrix view.
// Pure, like Summarize.
func BuildHeatmap(records []StockHealth) *Heatmap {
	hm := &Heatmap{Items: []string{}, Rows: []HeatmapRow{}}

	byLoc := map[int64]*HeatmapRow{}
	seenItems := map[string]bool{}

	for _, r := range records {
		row, ok := byLoc[r.LocationID]
		if !ok {
			row = &HeatmapRow{LocationID: r.LocationID, LocationName: r.LocationName}
			byLoc[r.LocationID] = row
		}
		row.Cells = append(row.Cells, HeatmapCell{
			ItemID:        r.ItemID,
			ItemName:      r.ItemName,
			Status:        r.Status,
			DaysRemaining: r.DaysRemaining,
		})

		if !seenItems[r.ItemName] {
			seenItems[r.ItemName] = true
			hm.Items = append(hm.Items, r.ItemName)
		}
	}

	for _, row := range byLoc {
		sort.Slice(row.Cells, func(i, j int) bool {
			return row.Cells[i].ItemName < row.Cells[j].ItemName
		})
		hm.Rows = append(hm.Rows, *row)
	}
	sort.Slice(hm.Rows, func(i, j int) bool {
		return hm.Rows[i].LocationName < hm.Rows[j].LocationName
	})
	sort.Strings(hm.Items)

	return hm
}
