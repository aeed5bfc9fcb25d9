package core

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input: negative quantities, unknown
// reference data, non-monotonic or duplicate dates, bad date strings.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ContinuityError reports an opening stock that does not reconcile with the
// pair's prior closing stock. The mismatch is surfaced, never corrected.
type ContinuityError struct {
	LocationID int64
	ItemID     int64
	Expected   int64 // prior closing stock
	Supplied   int64 // caller-supplied opening stock
}

func (e *ContinuityError) Error() string {
	return fmt.Sprintf("opening stock %d does not match prior closing stock %d for location %d item %d",
		e.Supplied, e.Expected, e.LocationID, e.ItemID)
}

// NegativeStockError reports a commit that would drive closing stock below zero.
type NegativeStockError struct {
	LocationID int64
	ItemID     int64
	Date       string
	WouldClose int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("transaction on %s would drive stock negative (closing %d) for location %d item %d",
		e.Date, e.WouldClose, e.LocationID, e.ItemID)
}

// NotFoundError reports a missing entity. Read-side queries over pairs with
// no history return empty results instead of this error.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// BulkFailure identifies one rejected row within a bulk submission.
type BulkFailure struct {
	ItemID int64 `json:"item_id"`
	Err    error `json:"-"`
}

// Reason returns the failure message for API payloads.
func (f BulkFailure) Reason() string { return f.Err.Error() }

// BulkError reports an all-or-nothing bulk commit that was rolled back.
// Every failing row is listed so the caller can correct and resubmit
// only those rows.
type BulkError struct {
	Failures []BulkFailure
}

func (e *BulkError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("item %d: %v", f.ItemID, f.Err)
	}
	return fmt.Sprintf("bulk commit rejected, no rows written: %s", strings.Join(parts, "; "))
}
