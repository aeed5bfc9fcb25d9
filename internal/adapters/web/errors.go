package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"medstock-agent/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Detail    any    `json:"detail,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorDetail(w, r, message, code, status, nil)
}

func writeErrorDetail(w http.ResponseWriter, r *http.Request, message, code string, status int, detail any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
		Detail:    detail,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the engine's typed errors onto HTTP statuses.
// Validation problems are 400, continuity conflicts 409, commits that the
// ledger refused 422, missing entities 404. Anything untyped is a 500 with
// the detail kept out of the response body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *core.ValidationError
		ce *core.ContinuityError
		ne *core.NegativeStockError
		nf *core.NotFoundError
		be *core.BulkError
	)
	switch {
	case errors.As(err, &be):
		type failure struct {
			ItemID int64  `json:"item_id"`
			Reason string `json:"reason"`
		}
		failures := make([]failure, len(be.Failures))
		for i, f := range be.Failures {
			failures[i] = failure{ItemID: f.ItemID, Reason: f.Reason()}
		}
		writeErrorDetail(w, r, "bulk commit rejected, no rows written", "BULK_REJECTED",
			http.StatusUnprocessableEntity, map[string]any{"failures": failures})

	case errors.As(err, &ce):
		writeErrorDetail(w, r, ce.Error(), "CONTINUITY_ERROR", http.StatusConflict, map[string]any{
			"location_id":      ce.LocationID,
			"item_id":          ce.ItemID,
			"expected_opening": ce.Expected,
			"supplied_opening": ce.Supplied,
		})

	case errors.As(err, &ne):
		writeErrorDetail(w, r, ne.Error(), "NEGATIVE_STOCK", http.StatusUnprocessableEntity, map[string]any{
			"location_id":   ne.LocationID,
			"item_id":       ne.ItemID,
			"date":          ne.Date,
			"closing_stock": ne.WouldClose,
		})

	case errors.As(err, &ve):
		writeErrorDetail(w, r, ve.Error(), "VALIDATION_ERROR", http.StatusBadRequest, map[string]any{
			"field": ve.Field,
		})

	case errors.As(err, &nf):
		writeError(w, r, nf.Error(), "NOT_FOUND", http.StatusNotFound)

	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
