package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"police-dashboard/cache"
	"police-dashboard/database/types"
	"police-dashboard/metrics"
	"police-dashboard/report"
)

const reportQueryLabel = "report"

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Page":    "reports",
		"Columns": types.ReportColumns,
	}

	rows, err := s.reportRows(r.Context())
	if err != nil {
		data["Error"] = err.Error()
		renderPage(w, http.StatusInternalServerError, "reports", data)
		return
	}
	data["Rows"] = rows
	data["Charts"] = report.Build(rows)
	renderPage(w, http.StatusOK, "reports", data)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reportRows(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to generate report", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rows":   rows,
		"charts": report.Build(rows),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, report.CSVFilename, "text/csv", report.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, report.XLSXFilename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report.WriteXLSX)
}

// export renders the report into a buffer first so a failure still yields a
// clean error response
func (s *Server) export(w http.ResponseWriter, r *http.Request, filename, contentType string,
	write func(w io.Writer, rows []report.Row) error) {
	rows, err := s.reportRows(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to generate report", err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export report", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// reportRows returns the summary report, from cache when possible
func (s *Server) reportRows(ctx context.Context) ([]report.Row, error) {
	var rows []report.Row
	if s.cache.Get(ctx, cache.ReportKey, &rows) {
		metrics.RecordCache(cache.ReportKey, true)
		return rows, nil
	}
	metrics.RecordCache(cache.ReportKey, false)

	start := time.Now()
	rows, err := s.store.Report(ctx)
	metrics.RecordQuery(reportQueryLabel, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []report.Row{}
	}
	_ = s.cache.Set(ctx, cache.ReportKey, rows)
	return rows, nil
}
