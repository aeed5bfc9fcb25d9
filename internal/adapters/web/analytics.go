package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

func (h *Handler) stockHealth(w http.ResponseWriter, r *http.Request) {
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

	health, err := h.svc.ListStockHealth(r.Context(), locationID, itemID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, health)
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	severity := r.URL.Query().Get("severity")
	alerts, err := h.svc.ListAlerts(r.Context(), severity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, alerts)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetSummary(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) heatmap(w http.ResponseWriter, r *http.Request) {
	hm, err := h.svc.GetHeatmap(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, hm)
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := 0
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, "invalid days", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		days = n
	}

	report, err := h.svc.ConsumptionTrends(r.Context(), q.Get("item"), q.Get("location"), days)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// exportHealth streams the full stock-health table as an XLSX workbook.
func (h *Handler) exportHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.svc.ListStockHealth(r.Context(), nil, nil)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"location",
		"location_type",
		"item",
		"category",
		"unit",
		"current_stock",
		"avg_daily_usage",
		"days_remaining",
		"status",
		"min_stock",
		"lead_time_days",
		"last_updated",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		writeError(w, r, "failed to build export", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	row := 2
	for _, rec := range health {
		excelRow := []interface{}{
			rec.LocationName,
			rec.LocationType,
			rec.ItemName,
			rec.Category,
			rec.Unit,
			rec.CurrentStock,
			rec.AvgDailyUsage.InexactFloat64(),
			rec.DaysRemaining.InexactFloat64(),
			string(rec.Status),
			rec.MinStock,
			rec.LeadTimeDays,
			rec.LastUpdated,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			writeError(w, r, "failed to build export", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			writeError(w, r, "failed to build export", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		row++
	}

	filename := fmt.Sprintf("stock-health-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		h.opts.Logger.Error().Err(err).Msg("failed to stream xlsx export")
	}
}
