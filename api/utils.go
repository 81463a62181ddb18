package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"police-dashboard/database"
	"police-dashboard/logging"
	"police-dashboard/metrics"
)

// respondJSON writes v as a JSON response with the given status
func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondWithError logs the error and sends a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		logging.Error().Err(err).Int("status", code).Msg(message)
	} else {
		logging.Warn().Int("status", code).Msg(message)
	}
	if code >= http.StatusInternalServerError {
		metrics.Errors.WithLabelValues("api").Inc()
	}
	respondJSON(w, code, map[string]string{"error": message})
}

// errorStatus maps repository errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case database.IsValidation(err):
		return http.StatusBadRequest
	case database.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// queryOverrides reads integer values for the query's declared parameters
// from the URL. Values that are not positive integers are ignored.
func queryOverrides(r *http.Request, q database.NamedQuery) map[string]int {
	overrides := map[string]int{}
	for _, p := range q.Params {
		valStr := r.URL.Query().Get(p.Name)
		if valStr == "" {
			continue
		}
		val, err := strconv.Atoi(valStr)
		if err != nil || val <= 0 {
			continue
		}
		overrides[p.Name] = val
	}
	return overrides
}
