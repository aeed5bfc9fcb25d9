package app

import (
	"context"
	"encoding/json"
	"fmt"

	"medstock-agent/internal/ai"
	"medstock-agent/internal/core"
)

// Parameter structs for the assistant's read tools. The schemas the model
// sees are reflected from these.

type overviewParams struct{}

type stockHealthParams struct {
	LocationID *int64 `json:"location_id,omitempty" jsonschema_description:"Filter to one location"`
	ItemID     *int64 `json:"item_id,omitempty" jsonschema_description:"Filter to one item"`
}

type criticalItemsParams struct {
	Severity string `json:"severity,omitempty" jsonschema:"enum=CRITICAL,enum=WARNING" jsonschema_description:"Narrow to one severity; omit for both"`
}

type reorderParams struct{}

type trendsParams struct {
	Item     string `json:"item,omitempty" jsonschema_description:"Item name filter (substring match)"`
	Location string `json:"location,omitempty" jsonschema_description:"Location name filter (substring match)"`
	Days     int    `json:"days,omitempty" jsonschema_description:"Trailing window in days, 1 to 90, default 14"`
}

// NewAssistantTools builds the read-tool registry the assistant runs over.
// Every handler delegates to AnalyticsService and returns JSON.
func NewAssistantTools(analytics core.AnalyticsService) *ai.ToolRegistry {
	reg := ai.NewToolRegistry()

	reg.Register(ai.ToolDefinition{
		Name:        "get_inventory_overview",
		Description: "Counts of locations, items and transactions, plus the date range the ledger covers. Use first to orient yourself.",
		InputSchema: ai.MustSchemaFor[overviewParams](),
		Handler: func(ctx context.Context, _ map[string]any) (string, error) {
			o, err := analytics.Overview(ctx)
			if err != nil {
				return "", err
			}
			return marshalTool(o)
		},
	})

	reg.Register(ai.ToolDefinition{
		Name:        "get_stock_health",
		Description: "Current stock, average daily usage, days of stock remaining and health status for every (location, item) pair, optionally filtered.",
		InputSchema: ai.MustSchemaFor[stockHealthParams](),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			locID := optionalID(params, "location_id")
			itemID := optionalID(params, "item_id")
			health, err := analytics.ListHealth(ctx, locID, itemID)
			if err != nil {
				return "", err
			}
			return marshalTool(health)
		},
	})

	reg.Register(ai.ToolDefinition{
		Name:        "get_critical_items",
		Description: "Items at WARNING or CRITICAL health, sorted most urgent first, each with a suggested reorder quantity.",
		InputSchema: ai.MustSchemaFor[criticalItemsParams](),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			severity, _ := params["severity"].(string)
			alerts, err := analytics.ListAlerts(ctx, core.HealthStatus(severity))
			if err != nil {
				return "", err
			}
			return marshalTool(alerts)
		},
	})

	reg.Register(ai.ToolDefinition{
		Name:        "get_reorder_suggestions",
		Description: "Suggested order quantities for every item currently below healthy stock levels, covering lead time plus a safety margin.",
		InputSchema: ai.MustSchemaFor[reorderParams](),
		Handler: func(ctx context.Context, _ map[string]any) (string, error) {
			alerts, err := analytics.ListAlerts(ctx, "")
			if err != nil {
				return "", err
			}
			type suggestion struct {
				LocationName string `json:"location_name"`
				ItemName     string `json:"item_name"`
				CurrentStock int64  `json:"current_stock"`
				Status       string `json:"status"`
				OrderQty     int64  `json:"suggested_order_qty"`
			}
			out := make([]suggestion, 0, len(alerts))
			for _, a := range alerts {
				out = append(out, suggestion{
					LocationName: a.LocationName,
					ItemName:     a.ItemName,
					CurrentStock: a.CurrentStock,
					Status:       string(a.Status),
					OrderQty:     a.SuggestedReorderQty,
				})
			}
			return marshalTool(out)
		},
	})

	reg.Register(ai.ToolDefinition{
		Name:        "get_consumption_trends",
		Description: "Daily issued totals over a trailing window, with total, average per day and the peak day.",
		InputSchema: ai.MustSchemaFor[trendsParams](),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			item, _ := params["item"].(string)
			location, _ := params["location"].(string)
			days := 0
			if f, ok := params["days"].(float64); ok {
				days = int(f)
			}
			report, err := analytics.ConsumptionTrends(ctx, item, location, days)
			if err != nil {
				return "", err
			}
			return marshalTool(report)
		},
	})

	return reg
}

func marshalTool(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(raw), nil
}

// optionalID reads a numeric parameter that may be absent or null.
func optionalID(params map[string]any, key string) *int64 {
	if f, ok := params[key].(float64); ok {
		id := int64(f)
		return &id
	}
	return nil
}
