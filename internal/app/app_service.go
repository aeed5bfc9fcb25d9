package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"medstock-agent/internal/ai"
	"medstock-agent/internal/core"
	"medstock-agent/internal/metrics"
)

type appService struct {
	pool      *pgxpool.Pool
	ledger    core.LedgerService
	analytics core.AnalyticsService
	catalog   core.CatalogService
	assistant ai.AssistantService
}

// NewAppService constructs an appService that satisfies ApplicationService.
// assistant may be nil, in which case Ask reports the feature as disabled.
func NewAppService(
	pool *pgxpool.Pool,
	ledger core.LedgerService,
	analytics core.AnalyticsService,
	catalog core.CatalogService,
	assistant ai.AssistantService,
) ApplicationService {
	return &appService{
		pool:      pool,
		ledger:    ledger,
		analytics: analytics,
		catalog:   catalog,
		assistant: assistant,
	}
}

// AddTransaction validates and commits one stock movement.
func (s *appService) AddTransaction(ctx context.Context, req AddTransactionRequest) (*core.Transaction, error) {
	tx, err := s.ledger.AddTransaction(ctx, core.AddTransactionInput{
		LocationID:      req.LocationID,
		ItemID:          req.ItemID,
		Date:            req.Date,
		Received:        req.Received,
		Issued:          req.Issued,
		OpeningOverride: req.OpeningOverride,
		Notes:           req.Notes,
		EnteredBy:       req.EnteredBy,
	})
	if err != nil {
		countRejection(err)
		return nil, err
	}
	metrics.TransactionsCommitted.Inc()
	return tx, nil
}

// AddBulkTransactions commits a daily batch for one location atomically.
func (s *appService) AddBulkTransactions(ctx context.Context, req BulkTransactionRequest) (*BulkResult, error) {
	items := make([]core.BulkItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = core.BulkItemInput{
			ItemID:          it.ItemID,
			Received:        it.Received,
			Issued:          it.Issued,
			OpeningOverride: it.OpeningOverride,
			Notes:           it.Notes,
		}
	}

	committed, err := s.ledger.AddBulk(ctx, core.AddBulkInput{
		LocationID: req.LocationID,
		Date:       req.Date,
		EnteredBy:  req.EnteredBy,
		Items:      items,
	})
	if err != nil {
		countRejection(err)
		return nil, err
	}

	metrics.TransactionsCommitted.Add(float64(len(committed)))
	return &BulkResult{Committed: committed, Count: len(committed)}, nil
}

// ListTransactions returns recent ledger rows, newest first.
func (s *appService) ListTransactions(ctx context.Context, locationID, itemID *int64, limit int) ([]core.Transaction, error) {
	return s.ledger.ListTransactions(ctx, locationID, itemID, limit)
}

// LatestStock returns the most recent transaction for a pair.
func (s *appService) LatestStock(ctx context.Context, locationID, itemID int64) (*core.Transaction, error) {
	return s.ledger.LatestStock(ctx, locationID, itemID)
}

// ListStockHealth returns classified health per (location, item) pair.
func (s *appService) ListStockHealth(ctx context.Context, locationID, itemID *int64) ([]core.StockHealth, error) {
	return s.analytics.ListHealth(ctx, locationID, itemID)
}

// ListAlerts returns WARNING/CRITICAL pairs with reorder suggestions.
func (s *appService) ListAlerts(ctx context.Context, severity string) ([]core.Alert, error) {
	return s.analytics.ListAlerts(ctx, core.HealthStatus(severity))
}

// GetSummary returns the dashboard roll-up.
func (s *appService) GetSummary(ctx context.Context) (*core.Summary, error) {
	return s.analytics.GetSummary(ctx)
}

// GetHeatmap returns the location-by-item status matrix.
func (s *appService) GetHeatmap(ctx context.Context) (*core.Heatmap, error) {
	return s.analytics.GetHeatmap(ctx)
}

// ConsumptionTrends reports daily issued totals over a trailing window.
func (s *appService) ConsumptionTrends(ctx context.Context, itemFilter, locFilter string, days int) (*core.TrendReport, error) {
	return s.analytics.ConsumptionTrends(ctx, itemFilter, locFilter, days)
}

// Overview returns ledger-wide counts and the covered date range.
func (s *appService) Overview(ctx context.Context) (*core.Overview, error) {
	return s.analytics.Overview(ctx)
}

func (s *appService) ListLocations(ctx context.Context) ([]core.Location, error) {
	return s.catalog.ListLocations(ctx)
}

func (s *appService) CreateLocation(ctx context.Context, req CreateLocationRequest) (*core.Location, error) {
	return s.catalog.CreateLocation(ctx, core.CreateLocationInput{
		Name:    req.Name,
		Type:    req.Type,
		Region:  req.Region,
		Address: req.Address,
	})
}

func (s *appService) GetLocation(ctx context.Context, id int64) (*core.Location, error) {
	return s.catalog.GetLocation(ctx, id)
}

func (s *appService) ListItems(ctx context.Context) ([]core.Item, error) {
	return s.catalog.ListItems(ctx)
}

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error) {
	return s.catalog.CreateItem(ctx, core.CreateItemInput{
		Name:         req.Name,
		Category:     req.Category,
		Unit:         req.Unit,
		LeadTimeDays: req.LeadTimeDays,
		MinStock:     req.MinStock,
	})
}

func (s *appService) GetItem(ctx context.Context, id int64) (*core.Item, error) {
	return s.catalog.GetItem(ctx, id)
}

// Ask routes a natural-language question through the assistant's read-tool loop.
func (s *appService) Ask(ctx context.Context, question, conversationID string, onStatus func(string)) (*ai.Reply, error) {
	if s.assistant == nil {
		return nil, fmt.Errorf("assistant is not configured (missing OpenAI API key)")
	}
	return s.assistant.Answer(ctx, question, conversationID, onStatus)
}

// countRejection records a rejected write under the violated invariant.
func countRejection(err error) {
	var (
		ve *core.ValidationError
		ce *core.ContinuityError
		ne *core.NegativeStockError
		be *core.BulkError
	)
	switch {
	case errors.As(err, &ce):
		metrics.TransactionsRejected.WithLabelValues("continuity").Inc()
	case errors.As(err, &ne):
		metrics.TransactionsRejected.WithLabelValues("negative_stock").Inc()
	case errors.As(err, &be):
		metrics.TransactionsRejected.WithLabelValues("bulk").Inc()
	case errors.As(err, &ve):
		metrics.TransactionsRejected.WithLabelValues("validation").Inc()
	default:
		metrics.TransactionsRejected.WithLabelValues("internal").Inc()
	}
}
