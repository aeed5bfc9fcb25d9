package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AddTransactionInput is a candidate single-row stock movement.
// EnteredBy is required: unattributed writes are rejected rather than
// silently tagged.
type AddTransactionInput struct {
	LocationID      int64
	ItemID          int64
	Date            string // YYYY-MM-DD
	Received        int64
	Issued          int64
	OpeningOverride *int64 // seed opening stock for a pair with no history
	Notes           string
	EnteredBy       string
}

// BulkItemInput is one item row within a bulk submission.
type BulkItemInput struct {
	ItemID          int64
	Received        int64
	Issued          int64
	OpeningOverride *int64
	Notes           string
}

// AddBulkInput is a daily batch entry: one location, one date, many items.
type AddBulkInput struct {
	LocationID int64
	Date       string
	EnteredBy  string
	Items      []BulkItemInput
}

// LedgerService owns all writes to the stock ledger and enforces the
// continuity invariants before any row is committed:
//
//	closing = opening + received − issued
//	received >= 0, issued >= 0, closing >= 0
//	opening equals the pair's prior closing (or a caller-supplied seed)
//	dates per pair are strictly increasing
type LedgerService interface {
	// AddTransaction validates and appends exactly one row. On failure the
	// returned error identifies the violated invariant (ValidationError,
	// ContinuityError or NegativeStockError) and nothing is written.
	AddTransaction(ctx context.Context, in AddTransactionInput) (*Transaction, error)

	// AddBulk validates and appends many rows for one location and date
	// atomically. If any row fails, no row is committed and the returned
	// *BulkError lists every failing item with its reason.
	AddBulk(ctx context.Context, in AddBulkInput) ([]Transaction, error)

	// LatestStock returns the most recent transaction for a pair, or a
	// NotFoundError when the pair has no history.
	LatestStock(ctx context.Context, locationID, itemID int64) (*Transaction, error)

	// ListTransactions returns rows ordered by date descending, optionally
	// filtered by location and/or item. limit <= 0 defaults to 50.
	ListTransactions(ctx context.Context, locationID, itemID *int64, limit int) ([]Transaction, error)
}

type ledger struct {
	pool *pgxpool.Pool
}

// NewLedger constructs a LedgerService backed by the given pool.
func NewLedger(pool *pgxpool.Pool) LedgerService {
	return &ledger{pool: pool}
}

func (l *ledger) AddTransaction(ctx context.Context, in AddTransactionInput) (*Transaction, error) {
	if err := checkStaticFields(in.Date, in.Received, in.Issued, in.EnteredBy); err != nil {
		return nil, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkLocationExists(ctx, tx, in.LocationID); err != nil {
		return nil, err
	}
	if err := checkItemExists(ctx, tx, in.ItemID); err != nil {
		return nil, err
	}
	if err := lockPair(ctx, tx, in.LocationID, in.ItemID); err != nil {
		return nil, err
	}

	planned, err := planRow(ctx, tx, in, nil)
	if err != nil {
		return nil, err
	}

	row, err := insertRow(ctx, tx, planned)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return row, nil
}

func (l *ledger) AddBulk(ctx context.Context, in AddBulkInput) ([]Transaction, error) {
	if !validDate(in.Date) {
		return nil, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a valid YYYY-MM-DD date", in.Date)}
	}
	if in.EnteredBy == "" {
		return nil, &ValidationError{Field: "entered_by", Reason: "author tag is required"}
	}
	if len(in.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkLocationExists(ctx, tx, in.LocationID); err != nil {
		return nil, err
	}

	// Lock every pair up front, in item order so two overlapping batches
	// cannot deadlock on each other.
	seen := map[int64]bool{}
	itemIDs := make([]int64, 0, len(in.Items))
	for _, item := range in.Items {
		if !seen[item.ItemID] {
			seen[item.ItemID] = true
			itemIDs = append(itemIDs, item.ItemID)
		}
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })
	for _, id := range itemIDs {
		if err := lockPair(ctx, tx, in.LocationID, id); err != nil {
			return nil, err
		}
	}

	// Two passes: plan every row first (collecting every failure so the
	// caller can fix the whole batch in one go), insert only if all passed.
	// Planning never touches the database write path, so a failed row does
	// not poison the surrounding pg transaction.
	var failures []BulkFailure
	var planned []AddTransactionInput
	batchPrior := map[int64]*Transaction{} // in-batch duplicate item guard

	for _, item := range in.Items {
		rowIn := AddTransactionInput{
			LocationID:      in.LocationID,
			ItemID:          item.ItemID,
			Date:            in.Date,
			Received:        item.Received,
			Issued:          item.Issued,
			OpeningOverride: item.OpeningOverride,
			Notes:           item.Notes,
			EnteredBy:       in.EnteredBy,
		}

		err := checkStaticFields(rowIn.Date, rowIn.Received, rowIn.Issued, rowIn.EnteredBy)
		if err == nil {
			err = checkItemExists(ctx, tx, rowIn.ItemID)
		}
		if err == nil {
			rowIn, err = planRow(ctx, tx, rowIn, batchPrior[item.ItemID])
		}
		if err != nil {
			failures = append(failures, BulkFailure{ItemID: item.ItemID, Err: err})
			continue
		}

		planned = append(planned, rowIn)
		closing := resolveOpening(rowIn) + rowIn.Received - rowIn.Issued
		batchPrior[item.ItemID] = &Transaction{Date: rowIn.Date, ClosingStock: closing}
	}

	if len(failures) > 0 {
		return nil, &BulkError{Failures: failures}
	}

	out := make([]Transaction, 0, len(planned))
	for _, rowIn := range planned {
		row, err := insertRow(ctx, tx, rowIn)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bulk transaction: %w", err)
	}
	return out, nil
}

func (l *ledger) LatestStock(ctx context.Context, locationID, itemID int64) (*Transaction, error) {
	var t Transaction
	err := l.pool.QueryRow(ctx, `
		SELECT id, location_id, item_id, date::text, opening_stock, received, issued,
		       closing_stock, notes, entered_by, created_at
		FROM stock_transactions
		WHERE location_id = $1 AND item_id = $2
		ORDER BY date DESC
		LIMIT 1
	`, locationID, itemID).Scan(
		&t.ID, &t.LocationID, &t.ItemID, &t.Date, &t.OpeningStock, &t.Received,
		&t.Issued, &t.ClosingStock, &t.Notes, &t.EnteredBy, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "transaction history", Ref: fmt.Sprintf("for location %d item %d", locationID, itemID)}
		}
		return nil, fmt.Errorf("failed to fetch latest stock: %w", err)
	}
	return &t, nil
}

func (l *ledger) ListTransactions(ctx context.Context, locationID, itemID *int64, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, location_id, item_id, date::text, opening_stock, received, issued,
		       closing_stock, notes, entered_by, created_at
		FROM stock_transactions
		WHERE ($1::bigint IS NULL OR location_id = $1)
		  AND ($2::bigint IS NULL OR item_id = $2)
		ORDER BY date DESC, id DESC
		LIMIT $3
	`, locationID, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.LocationID, &t.ItemID, &t.Date, &t.OpeningStock, &t.Received,
			&t.Issued, &t.ClosingStock, &t.Notes, &t.EnteredBy, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ── validation helpers ────────────────────────────────────────────────────────

func checkStaticFields(date string, received, issued int64, enteredBy string) error {
	if !validDate(date) {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a valid YYYY-MM-DD date", date)}
	}
	if received < 0 {
		return &ValidationError{Field: "received", Reason: "must not be negative"}
	}
	if issued < 0 {
		return &ValidationError{Field: "issued", Reason: "must not be negative"}
	}
	if enteredBy == "" {
		return &ValidationError{Field: "entered_by", Reason: "author tag is required"}
	}
	return nil
}

func checkLocationExists(ctx context.Context, tx pgx.Tx, locationID int64) error {
	var one int
	err := tx.QueryRow(ctx, "SELECT 1 FROM locations WHERE id = $1", locationID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ValidationError{Field: "location_id", Reason: fmt.Sprintf("location %d does not exist", locationID)}
	}
	if err != nil {
		return fmt.Errorf("failed to resolve location: %w", err)
	}
	return nil
}

func checkItemExists(ctx context.Context, tx pgx.Tx, itemID int64) error {
	var one int
	err := tx.QueryRow(ctx, "SELECT 1 FROM items WHERE id = $1", itemID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ValidationError{Field: "item_id", Reason: fmt.Sprintf("item %d does not exist", itemID)}
	}
	if err != nil {
		return fmt.Errorf("failed to resolve item: %w", err)
	}
	return nil
}

// lockPair serializes writers for one (location, item) chain via an advisory
// lock held until the surrounding transaction ends. Row locks on the chain
// head do not suffice: an empty chain has no row to lock, and a blocked
// locking SELECT does not rediscover rows a concurrent writer appended after
// the head. The advisory lock exists independent of history, and the head
// read that follows it runs on a fresh snapshot.
func lockPair(ctx context.Context, tx pgx.Tx, locationID, itemID int64) error {
	_, err := tx.Exec(ctx,
		"SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))",
		locationID, itemID)
	if err != nil {
		return fmt.Errorf("failed to lock stock chain: %w", err)
	}
	return nil
}

// planRow verifies the candidate against the pair's most recent committed row
// (or batchPrior, when an earlier row of the same batch targets the same
// item) and resolves the opening stock. Callers hold the pair's advisory lock
// before this runs, so the head read observes the latest committed chain.
func planRow(ctx context.Context, tx pgx.Tx, in AddTransactionInput, batchPrior *Transaction) (AddTransactionInput, error) {
	prior := batchPrior
	if prior == nil {
		var p Transaction
		err := tx.QueryRow(ctx, `
			SELECT date::text, closing_stock
			FROM stock_transactions
			WHERE location_id = $1 AND item_id = $2
			ORDER BY date DESC
			LIMIT 1
		`, in.LocationID, in.ItemID).Scan(&p.Date, &p.ClosingStock)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			prior = nil
		case err != nil:
			return in, fmt.Errorf("failed to fetch prior transaction: %w", err)
		default:
			prior = &p
		}
	}

	if prior != nil {
		if in.Date <= prior.Date {
			if in.Date == prior.Date {
				return in, &ValidationError{Field: "date", Reason: fmt.Sprintf("transaction for %s already exists for this pair", in.Date)}
			}
			return in, &ValidationError{Field: "date", Reason: fmt.Sprintf("date %s is not later than the most recent transaction on %s", in.Date, prior.Date)}
		}
		if in.OpeningOverride != nil && *in.OpeningOverride != prior.ClosingStock {
			return in, &ContinuityError{
				LocationID: in.LocationID,
				ItemID:     in.ItemID,
				Expected:   prior.ClosingStock,
				Supplied:   *in.OpeningOverride,
			}
		}
		in.OpeningOverride = &prior.ClosingStock
	}

	closing := resolveOpening(in) + in.Received - in.Issued
	if closing < 0 {
		return in, &NegativeStockError{
			LocationID: in.LocationID,
			ItemID:     in.ItemID,
			Date:       in.Date,
			WouldClose: closing,
		}
	}
	return in, nil
}

// resolveOpening returns the opening stock for a planned row: the override
// (which planRow has already reconciled against the prior closing) or the
// zero seed for a pair with no history.
func resolveOpening(in AddTransactionInput) int64 {
	if in.OpeningOverride != nil {
		return *in.OpeningOverride
	}
	return 0
}

func insertRow(ctx context.Context, tx pgx.Tx, in AddTransactionInput) (*Transaction, error) {
	opening := resolveOpening(in)
	t := Transaction{
		LocationID:   in.LocationID,
		ItemID:       in.ItemID,
		Date:         in.Date,
		OpeningStock: opening,
		Received:     in.Received,
		Issued:       in.Issued,
		ClosingStock: opening + in.Received - in.Issued,
		Notes:        in.Notes,
		EnteredBy:    in.EnteredBy,
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO stock_transactions
			(location_id, item_id, date, opening_stock, received, issued, closing_stock, notes, entered_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, t.LocationID, t.ItemID, t.Date, t.OpeningStock, t.Received, t.Issued, t.ClosingStock, t.Notes, t.EnteredBy,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Concurrent writer won the race for this (location, item, date).
			return nil, &ValidationError{Field: "date", Reason: fmt.Sprintf("transaction for %s already exists for this pair", t.Date)}
		}
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return &t, nil
}
