package web

import (
	"net/http"
	"strconv"

	"medstock-agent/internal/app"
)

// ── Reference data ────────────────────────────────────────────────────────────

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.svc.ListLocations(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, locations)
}

func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	var req app.CreateLocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	location, err := h.svc.CreateLocation(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, location)
}

func (h *Handler) getLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, "invalid location id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	location, err := h.svc.GetLocation(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, location)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, items)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req app.CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.svc.CreateItem(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, item)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, "invalid item id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// ── Ledger ────────────────────────────────────────────────────────────────────

func (h *Handler) addTransaction(w http.ResponseWriter, r *http.Request) {
	var req app.AddTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := h.svc.AddTransaction(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, tx)
}

func (h *Handler) addBulkTransactions(w http.ResponseWriter, r *http.Request) {
	var req app.BulkTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.AddBulkTransactions(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	locationID, ok := queryID(r, "location_id")
	if !ok {
		writeError(w, r, "invalid location_id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	itemID, ok := queryID(r, "item_id")
	if !ok {
		writeError(w, r, "invalid item_id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, r, "limit must be between 1 and 500", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	txs, err := h.svc.ListTransactions(r.Context(), locationID, itemID, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, txs)
}

func (h *Handler) latestStock(w http.ResponseWriter, r *http.Request) {
	locationID, lok := pathID(r, "locationID")
	itemID, iok := pathID(r, "itemID")
	if !lok || !iok {
		writeError(w, r, "invalid location or item id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.LatestStock(r.Context(), locationID, itemID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, tx)
}
