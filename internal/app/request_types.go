package app

// AddTransactionRequest is the input for committing one stock movement.
type AddTransactionRequest struct {
	LocationID      int64  `json:"location_id"`
	ItemID          int64  `json:"item_id"`
	Date            string `json:"date"` // YYYY-MM-DD
	Received        int64  `json:"received"`
	Issued          int64  `json:"issued"`
	OpeningOverride *int64 `json:"opening_override,omitempty"`
	Notes           string `json:"notes"`
	EnteredBy       string `json:"entered_by"`
}

// BulkItemRequest is a single item row within a BulkTransactionRequest.
type BulkItemRequest struct {
	ItemID          int64  `json:"item_id"`
	Received        int64  `json:"received"`
	Issued          int64  `json:"issued"`
	OpeningOverride *int64 `json:"opening_override,omitempty"`
	Notes           string `json:"notes"`
}

// BulkTransactionRequest is a daily batch entry: one location, one date,
// many items, committed all-or-nothing.
type BulkTransactionRequest struct {
	LocationID int64             `json:"location_id"`
	Date       string            `json:"date"`
	EnteredBy  string            `json:"entered_by"`
	Items      []BulkItemRequest `json:"items"`
}

// CreateLocationRequest is the input for registering a storage location.
type CreateLocationRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Region  string `json:"region"`
	Address string `json:"address"`
}

// CreateItemRequest is the input for registering a tracked item.
type CreateItemRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Unit         string `json:"unit"`
	LeadTimeDays int    `json:"lead_time_days"`
	MinStock     int64  `json:"min_stock"`
}
