package core_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"medstock-agent/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_transactions, items, locations RESTART IDENTITY CASCADE;

		INSERT INTO locations (id, name, type, region) VALUES
		(1, 'Apollo Hospital - Mumbai', 'hospital', 'Maharashtra'),
		(2, 'Primary Health Centre - Jaipur', 'rural_clinic', 'Rajasthan');

		INSERT INTO items (id, name, category, unit, lead_time_days, min_stock) VALUES
		(1, 'Paracetamol 500mg', 'painkiller', 'tablets', 5, 100),
		(2, 'Amoxicillin 500mg', 'antibiotic', 'tablets', 7, 200),
		(3, 'Surgical Gloves', 'first_aid', 'pairs', 5, 300);

		SELECT setval('locations_id_seq', 10);
		SELECT setval('items_id_seq', 10);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func mustAdd(t *testing.T, ledger core.LedgerService, in core.AddTransactionInput) *core.Transaction {
	t.Helper()
	tx, err := ledger.AddTransaction(context.Background(), in)
	if err != nil {
		t.Fatalf("AddTransaction(%+v) failed: %v", in, err)
	}
	return tx
}

func seedOpening(v int64) *int64 { return &v }

func TestLedger_ClosingArithmetic(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)

	tx := mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-01",
		Received: 50, Issued: 30,
		OpeningOverride: seedOpening(100),
		EnteredBy:       "ward-a",
	})

	if tx.OpeningStock != 100 || tx.ClosingStock != 120 {
		t.Errorf("expected opening 100 closing 120, got %d and %d", tx.OpeningStock, tx.ClosingStock)
	}

	// Next day opening is inferred from prior closing.
	tx2 := mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-02",
		Issued:    20,
		EnteredBy: "ward-a",
	})
	if tx2.OpeningStock != 120 || tx2.ClosingStock != 100 {
		t.Errorf("expected opening 120 closing 100, got %d and %d", tx2.OpeningStock, tx2.ClosingStock)
	}
}

func TestLedger_ContinuityRejection(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-01",
		Received:        100,
		OpeningOverride: seedOpening(0),
		EnteredBy:       "ward-a",
	})

	// Supplied opening disagrees with the prior closing of 100.
	_, err := ledger.AddTransaction(ctx, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-02",
		Issued:          10,
		OpeningOverride: seedOpening(90),
		EnteredBy:       "ward-a",
	})

	var ce *core.ContinuityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ContinuityError, got %v", err)
	}
	if ce.Expected != 100 || ce.Supplied != 90 {
		t.Errorf("expected mismatch 100 vs 90, got %d vs %d", ce.Expected, ce.Supplied)
	}

	// The rejected row must not exist.
	var count int
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM stock_transactions WHERE location_id = 1 AND item_id = 1").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 committed row, found %d", count)
	}
}

func TestLedger_NegativeStockRejection(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// 100 units, issue 20 per day: day 5 ends at zero, day 6 would go negative.
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 2, ItemID: 1, Date: "2026-08-01",
		Issued:          20,
		OpeningOverride: seedOpening(100),
		EnteredBy:       "phc-jaipur",
	})
	for _, date := range []string{"2026-08-02", "2026-08-03", "2026-08-04", "2026-08-05"} {
		mustAdd(t, ledger, core.AddTransactionInput{
			LocationID: 2, ItemID: 1, Date: date,
			Issued: 20, EnteredBy: "phc-jaipur",
		})
	}

	latest, err := ledger.LatestStock(ctx, 2, 1)
	if err != nil {
		t.Fatalf("LatestStock failed: %v", err)
	}
	if latest.ClosingStock != 0 {
		t.Fatalf("expected stock exhausted at 0, got %d", latest.ClosingStock)
	}

	_, err = ledger.AddTransaction(ctx, core.AddTransactionInput{
		LocationID: 2, ItemID: 1, Date: "2026-08-06",
		Issued: 20, EnteredBy: "phc-jaipur",
	})
	var ne *core.NegativeStockError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NegativeStockError, got %v", err)
	}
	if ne.WouldClose != -20 {
		t.Errorf("expected would-close -20, got %d", ne.WouldClose)
	}
}

func TestLedger_DateOrdering(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 2, Date: "2026-08-10",
		Received:        500,
		OpeningOverride: seedOpening(0),
		EnteredBy:       "ward-b",
	})

	tests := []struct {
		name string
		date string
	}{
		{name: "duplicate date", date: "2026-08-10"},
		{name: "earlier date", date: "2026-08-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.AddTransaction(ctx, core.AddTransactionInput{
				LocationID: 1, ItemID: 2, Date: tt.date,
				Issued: 10, EnteredBy: "ward-b",
			})
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != "date" {
				t.Errorf("expected date field, got %q", ve.Field)
			}
		})
	}
}

func TestLedger_RequiredEnteredBy(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)

	_, err := ledger.AddTransaction(context.Background(), core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-01",
		Received:        10,
		OpeningOverride: seedOpening(0),
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "entered_by" {
		t.Errorf("expected entered_by field, got %q", ve.Field)
	}
}

func TestLedger_BulkAtomicity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// Give item 1 some history so its batch row is valid.
	mustAdd(t, ledger, core.AddTransactionInput{
		LocationID: 1, ItemID: 1, Date: "2026-08-01",
		Received:        200,
		OpeningOverride: seedOpening(0),
		EnteredBy:       "ward-a",
	})

	// Item 3 starts empty, so issuing from it must fail — and take the
	// whole batch down with it.
	_, err := ledger.AddBulk(ctx, core.AddBulkInput{
		LocationID: 1, Date: "2026-08-02", EnteredBy: "ward-a",
		Items: []core.BulkItemInput{
			{ItemID: 1, Issued: 50},
			{ItemID: 2, Received: 100},
			{ItemID: 3, Issued: 10},
		},
	})

	var be *core.BulkError
	if !errors.As(err, &be) {
		t.Fatalf("expected BulkError, got %v", err)
	}
	if len(be.Failures) != 1 || be.Failures[0].ItemID != 3 {
		t.Fatalf("expected exactly one failure for item 3, got %+v", be.Failures)
	}

	var count int
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM stock_transactions WHERE date = '2026-08-02'").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no rows from rejected batch, found %d", count)
	}

	// Fixing the failing row commits the whole batch.
	committed, err := ledger.AddBulk(ctx, core.AddBulkInput{
		LocationID: 1, Date: "2026-08-02", EnteredBy: "ward-a",
		Items: []core.BulkItemInput{
			{ItemID: 1, Issued: 50},
			{ItemID: 2, Received: 100},
			{ItemID: 3, Received: 40, Issued: 10},
		},
	})
	if err != nil {
		t.Fatalf("corrected batch failed: %v", err)
	}
	if len(committed) != 3 {
		t.Errorf("expected 3 committed rows, got %d", len(committed))
	}
}

func TestLedger_UnknownReferences(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	_, err := ledger.AddTransaction(ctx, core.AddTransactionInput{
		LocationID: 99, ItemID: 1, Date: "2026-08-01",
		Received: 10, EnteredBy: "ward-a",
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "location_id" {
		t.Errorf("expected location_id ValidationError, got %v", err)
	}

	_, err = ledger.AddTransaction(ctx, core.AddTransactionInput{
		LocationID: 1, ItemID: 99, Date: "2026-08-01",
		Received: 10, EnteredBy: "ward-a",
	})
	if !errors.As(err, &ve) || ve.Field != "item_id" {
		t.Errorf("expected item_id ValidationError, got %v", err)
	}
}

func TestLedger_ConcurrentWritersPreserveContinuity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// Six writers race on one pair, none supplying an opening override. The
	// pair starts with no history, so each writer believes it might be the
	// seed. Whatever subset commits, the surviving chain must be continuous:
	// an interleaving where two writers both resolve opening from the same
	// stale head would break it.
	var wg sync.WaitGroup
	for day := 1; day <= 6; day++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, _ = ledger.AddTransaction(ctx, core.AddTransactionInput{
				LocationID: 1, ItemID: 1,
				Date:      fmt.Sprintf("2026-08-%02d", day),
				Received:  int64(10 * day),
				Issued:    int64(day),
				EnteredBy: "ward-a",
			})
		}(day)
	}
	wg.Wait()

	locID, itemID := int64(1), int64(1)
	rows, err := ledger.ListTransactions(ctx, &locID, &itemID, 50)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected at least one committed row")
	}

	// rows are newest first; walk oldest to newest.
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if r.ClosingStock != r.OpeningStock+r.Received-r.Issued {
			t.Errorf("row %s: closing %d breaks arithmetic", r.Date, r.ClosingStock)
		}
		if i == len(rows)-1 {
			if r.OpeningStock != 0 {
				t.Errorf("seed row %s: expected opening 0, got %d", r.Date, r.OpeningStock)
			}
			continue
		}
		prior := rows[i+1]
		if r.OpeningStock != prior.ClosingStock {
			t.Errorf("row %s: opening %d does not match prior closing %d on %s",
				r.Date, r.OpeningStock, prior.ClosingStock, prior.Date)
		}
	}
}

func TestLedger_LatestStockNotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)

	_, err := ledger.LatestStock(context.Background(), 1, 1)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for empty pair, got %v", err)
	}
}
