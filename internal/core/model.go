package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// HealthStatus is the three-level stock health classification.
type HealthStatus string

const (
	StatusCritical HealthStatus = "CRITICAL"
	StatusWarning  HealthStatus = "WARNING"
	StatusHealthy  HealthStatus = "HEALTHY"
)

// Valid reports whether s is one of the three known statuses.
func (s HealthStatus) Valid() bool {
	return s == StatusCritical || s == StatusWarning || s == StatusHealthy
}

// Location is a healthcare facility that holds stock. Reference data:
// created administratively, never deleted while transactions reference it.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // hospital, clinic, rural_clinic
	Region    string    `json:"region"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a medicine or supply tracked across locations. LeadTimeDays feeds
// the reorder estimate; MinStock feeds the shortage view.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	LeadTimeDays int       `json:"lead_time_days"`
	MinStock     int64     `json:"min_stock"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction is one day's stock movement for a (location, item) pair.
// The (location_id, item_id, date) triple is the natural key; rows are
// append-only and a correction is a new row for a later date.
type Transaction struct {
	ID           int64     `json:"id"`
	LocationID   int64     `json:"location_id"`
	ItemID       int64     `json:"item_id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	OpeningStock int64     `json:"opening_stock"`
	Received     int64     `json:"received"`
	Issued       int64     `json:"issued"`
	ClosingStock int64     `json:"closing_stock"`
	Notes        string    `json:"notes,omitempty"`
	EnteredBy    string    `json:"entered_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockHealth is the classified state of one (location, item) pair,
// derived from its most recent transaction and trailing usage window.
type StockHealth struct {
	LocationID    int64           `json:"location_id"`
	ItemID        int64           `json:"item_id"`
	LocationName  string          `json:"location_name"`
	LocationType  string          `json:"location_type"`
	ItemName      string          `json:"item_name"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	LeadTimeDays  int             `json:"lead_time_days"`
	MinStock      int64           `json:"min_stock"`
	CurrentStock  int64           `json:"current_stock"`
	AvgDailyUsage decimal.Decimal `json:"avg_daily_usage"`
	DaysRemaining decimal.Decimal `json:"days_remaining"`
	Status        HealthStatus    `json:"status"`
	LastUpdated   string          `json:"last_updated"` // YYYY-MM-DD of the latest transaction
}

// Alert is a WARNING or CRITICAL health record enriched with a reorder estimate.
type Alert struct {
	StockHealth
	SuggestedReorderQty int64 `json:"suggested_reorder_qty"`
}

const dateLayout = "2006-01-02"

// validDate reports whether s is a well-formed YYYY-MM-DD date.
func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
