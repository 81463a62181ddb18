package api

import (
	"context"
	"net/http"
	"time"

	"police-dashboard/database"
	"police-dashboard/database/types"
	"police-dashboard/metrics"
)

// handleInsights renders the query picker and, when a name is selected, the
// result table or the error
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	catalog := database.NamedQueries()
	name := r.URL.Query().Get("name")
	data := map[string]any{
		"Page":     "insights",
		"Queries":  catalog,
		"Selected": name,
	}
	if name == "" {
		renderPage(w, http.StatusOK, "insights", data)
		return
	}

	result, err := s.runNamedQuery(r, name)
	if err != nil {
		data["Error"] = err.Error()
		renderPage(w, errorStatus(err), "insights", data)
		return
	}
	data["Result"] = result
	renderPage(w, http.StatusOK, "insights", data)
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, database.NamedQueries())
}

func (s *Server) handleRunQuery(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'name' is required", nil)
		return
	}

	result, err := s.runNamedQuery(r, name)
	if err != nil {
		respondWithError(w, errorStatus(err), err.Error(), err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"columns": result.Columns,
		"rows":    result.Rows,
		"count":   result.Len(),
	})
}

// runNamedQuery resolves the query, applies parameter overrides from the URL
// and executes it
func (s *Server) runNamedQuery(r *http.Request, name string) (*types.ResultSet, error) {
	q, err := database.FindNamedQuery(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	result, err := s.store.RunNamedQuery(ctx, q.Name, queryOverrides(r, q))
	metrics.RecordQuery(q.Name, time.Since(start), err)
	return result, err
}
