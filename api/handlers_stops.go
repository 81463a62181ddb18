package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"police-dashboard/cache"
	"police-dashboard/database"
	models "police-dashboard/database/models_pkg"
	"police-dashboard/database/types"
	"police-dashboard/logging"
	"police-dashboard/metrics"
	"police-dashboard/realtime"
)

// stopFormFields are the form inputs in display order
var stopFormFields = []string{
	"stop_date", "stop_time", "country_name", "driver_gender", "driver_age",
	"driver_race", "violation", "search_conducted", "search_type",
	"is_arrested", "drugs_related_stop", "stop_duration", "vehicle_number",
}

func (s *Server) handleStopForm(w http.ResponseWriter, r *http.Request) {
	s.renderStopForm(w, r, http.StatusOK, stopFormState{})
}

type stopFormState struct {
	Input    database.StopInput
	Inserted *database.StopRecord
	Error    string
}

func (s *Server) renderStopForm(w http.ResponseWriter, r *http.Request, status int, state stopFormState) {
	data := map[string]any{
		"Page":      "insert",
		"Options":   s.options(r.Context()),
		"Genders":   models.Genders,
		"Durations": models.StopDurations,
		"Input":     state.Input,
		"Inserted":  state.Inserted,
		"Error":     state.Error,
	}
	renderPage(w, status, "insert", data)
}

// handleStopFormSubmit appends the submitted log and re-renders the form
// with either the stored row or the error
func (s *Server) handleStopFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderStopForm(w, r, http.StatusBadRequest, stopFormState{Error: "invalid form: " + err.Error()})
		return
	}

	values := make(map[string]string, len(stopFormFields))
	for _, f := range stopFormFields {
		values[f] = r.PostFormValue(f)
	}
	in := stopInputFromValues(values)

	stop, err := s.insertStop(r.Context(), in, "form")
	if err != nil {
		s.renderStopForm(w, r, errorStatus(err), stopFormState{Input: in, Error: err.Error()})
		return
	}
	s.renderStopForm(w, r, http.StatusOK, stopFormState{Inserted: stop})
}

func (s *Server) handleCreateStop(w http.ResponseWriter, r *http.Request) {
	var in database.StopInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	stop, err := s.insertStop(r.Context(), in, "api")
	if err != nil {
		respondWithError(w, errorStatus(err), err.Error(), err)
		return
	}
	respondJSON(w, http.StatusCreated, stop)
}

// insertStop validates and appends one stop, then refreshes cached values
// and announces it to event stream clients
func (s *Server) insertStop(ctx context.Context, in database.StopInput, source string) (*database.StopRecord, error) {
	stop, err := database.ParseStopInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertStop(ctx, stop); err != nil {
		metrics.Errors.WithLabelValues(source).Inc()
		return nil, err
	}

	metrics.StopsInserted.WithLabelValues(source).Inc()
	s.cache.Invalidate(ctx)
	if s.broker != nil {
		s.broker.Broadcast(realtime.EventStopCreated, stop)
	}
	logging.Info().Int64("id", stop.ID).Str("source", source).Msg("✅ New log submitted")
	return stop, nil
}

func (s *Server) handleGetStop(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ID", nil)
		return
	}

	stop, err := s.store.GetStop(r.Context(), id)
	if err != nil {
		respondWithError(w, errorStatus(err), err.Error(), err)
		return
	}
	respondJSON(w, http.StatusOK, stop)
}

func (s *Server) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.options(r.Context()))
}

// options returns the dropdown lists, from cache when possible. A list whose
// query failed is empty; an all-empty result is not cached.
func (s *Server) options(ctx context.Context) types.DistinctOptions {
	var opts types.DistinctOptions
	if s.cache.Get(ctx, cache.OptionsKey, &opts) {
		metrics.RecordCache(cache.OptionsKey, true)
		return opts
	}
	metrics.RecordCache(cache.OptionsKey, false)

	opts = s.store.DistinctOptions(ctx)
	if len(opts.Countries)+len(opts.Races)+len(opts.Violations) > 0 {
		_ = s.cache.Set(ctx, cache.OptionsKey, opts)
	}
	return opts
}

func stopInputFromValues(v map[string]string) database.StopInput {
	return database.StopInput{
		StopDate:         v["stop_date"],
		StopTime:         v["stop_time"],
		CountryName:      v["country_name"],
		DriverGender:     v["driver_gender"],
		DriverAge:        v["driver_age"],
		DriverRace:       v["driver_race"],
		Violation:        v["violation"],
		SearchConducted:  v["search_conducted"],
		SearchType:       v["search_type"],
		IsArrested:       v["is_arrested"],
		DrugsRelatedStop: v["drugs_related_stop"],
		StopDuration:     v["stop_duration"],
		VehicleNumber:    v["vehicle_number"],
	}
}
