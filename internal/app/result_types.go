package app

import "medstock-agent/internal/core"

// BulkResult is returned by a successful AddBulkTransactions call.
type BulkResult struct {
	Committed []core.Transaction `json:"committed"`
	Count     int                `json:"count"`
}
