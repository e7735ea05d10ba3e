package api

import (
	"fmt"
	"net/http"

	"seatwise/internal/audit"
	"seatwise/internal/metrics"
)

// handleExport streams an Excel workbook of reservations for a date range.
// GET /api/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to date precedes from date")
		return
	}

	filename := fmt.Sprintf("reservations_%s_%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	exporter := audit.NewExporter(s.db, s.logger)
	if err := exporter.WriteRange(r.Context(), s.restaurantID, from, to, w); err != nil {
		s.logger.Error().Err(err).Msg("export failed")
	}
}
