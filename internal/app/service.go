package app

import (
	"context"

	"medstock-agent/internal/ai"
	"medstock-agent/internal/core"
)

// ApplicationService is the single interface all adapters (web, CLI tools)
// call. It decouples presentation from the engine. Implementations must
// contain no display logic of any kind.
type ApplicationService interface {
	// AddTransaction validates and commits one stock movement.
	AddTransaction(ctx context.Context, req AddTransactionRequest) (*core.Transaction, error)

	// AddBulkTransactions commits a daily batch for one location atomically.
	// On failure no rows are written and the error carries per-item reasons.
	AddBulkTransactions(ctx context.Context, req BulkTransactionRequest) (*BulkResult, error)

	// ListTransactions returns recent ledger rows, newest first.
	ListTransactions(ctx context.Context, locationID, itemID *int64, limit int) ([]core.Transaction, error)

	// LatestStock returns the most recent transaction for a pair.
	LatestStock(ctx context.Context, locationID, itemID int64) (*core.Transaction, error)

	// ListStockHealth returns classified health per (location, item) pair.
	ListStockHealth(ctx context.Context, locationID, itemID *int64) ([]core.StockHealth, error)

	// ListAlerts returns WARNING/CRITICAL pairs with reorder suggestions.
	// severity is "", "WARNING" or "CRITICAL".
	ListAlerts(ctx context.Context, severity string) ([]core.Alert, error)

	// GetSummary returns the dashboard roll-up.
	GetSummary(ctx context.Context) (*core.Summary, error)

	// GetHeatmap returns the location-by-item status matrix.
	GetHeatmap(ctx context.Context) (*core.Heatmap, error)

	// ConsumptionTrends reports daily issued totals over a trailing window.
	ConsumptionTrends(ctx context.Context, itemFilter, locFilter string, days int) (*core.TrendReport, error)

	// Overview returns ledger-wide counts and the covered date range.
	Overview(ctx context.Context) (*core.Overview, error)

	// Reference data.
	ListLocations(ctx context.Context) ([]core.Location, error)
	CreateLocation(ctx context.Context, req CreateLocationRequest) (*core.Location, error)
	GetLocation(ctx context.Context, id int64) (*core.Location, error)
	ListItems(ctx context.Context) ([]core.Item, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error)
	GetItem(ctx context.Context, id int64) (*core.Item, error)

	// Ask routes a natural-language question through the assistant's
	// read-tool loop. conversationID, when non-empty, continues a prior
	// exchange; the reply carries the id for the next turn. onStatus, when
	// non-nil, receives progress notes.
	Ask(ctx context.Context, question, conversationID string, onStatus func(string)) (*ai.Reply, error)
}
