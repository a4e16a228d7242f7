package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
)

// handleSummary serves the month-bucketed chart for the summary page.
// Results are cached per user and range; mutations invalidate them.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "summary", s.aggregator.Summary)
}

// handleSavingsReport serves the reports API chart. It shares the
// summary's shape but resolves "year" to the full history.
func (s *Server) handleSavingsReport(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "report", s.aggregator.Report)
}

// serveChart answers a chart request from the cache or by running
// compute. Amount series serialize as quoted decimal strings, e.g.
// "1234.56", never as floats; clients coerce on their side.
func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, kind string, compute func(context.Context, int64, string) (core.ChartData, error)) {
	uid := userID(r)
	rangeName := r.URL.Query().Get("range")

	key := chartKey(uid, kind, rangeName)
	if data, ok := s.chartCache.Get(key); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	data, err := compute(r.Context(), uid, rangeName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.chartCache.Set(key, data)
	writeJSON(w, http.StatusOK, data)
}
