package database

import (
	"slices"
	"strconv"
	"strings"
	"time"

	models "police-dashboard/database/models_pkg"
)

// Form widget limits
const (
	MinDriverAge = 0
	MaxDriverAge = 120
)

// ParseStopInput converts a form submission into a StopRecord. Only the
// constraints the form widgets themselves impose are checked: a real date and
// time, an age in range, and values picked from the fixed select lists.
func ParseStopInput(in StopInput) (*StopRecord, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.StopDate))
	if err != nil {
		return nil, NewValidationErrorWithValue("stop_date", "expected YYYY-MM-DD", in.StopDate)
	}

	stopTime, err := normalizeClock(in.StopTime)
	if err != nil {
		return nil, NewValidationErrorWithValue("stop_time", "expected HH:MM", in.StopTime)
	}

	age, err := strconv.Atoi(strings.TrimSpace(in.DriverAge))
	if err != nil || age < MinDriverAge || age > MaxDriverAge {
		return nil, NewValidationErrorWithValue("driver_age", "must be a whole number between 0 and 120", in.DriverAge)
	}

	if !slices.Contains(models.Genders, in.DriverGender) {
		return nil, NewValidationErrorWithValue("driver_gender", "must be male, female or other", in.DriverGender)
	}
	if !slices.Contains(models.StopDurations, in.StopDuration) {
		return nil, NewValidationErrorWithValue("stop_duration", "unknown duration bucket", in.StopDuration)
	}

	searched, err := parseFlag("search_conducted", in.SearchConducted)
	if err != nil {
		return nil, err
	}
	arrested, err := parseFlag("is_arrested", in.IsArrested)
	if err != nil {
		return nil, err
	}
	drugs, err := parseFlag("drugs_related_stop", in.DrugsRelatedStop)
	if err != nil {
		return nil, err
	}

	return &StopRecord{
		StopDate:         &date,
		StopTime:         &stopTime,
		CountryName:      in.CountryName,
		DriverGender:     in.DriverGender,
		DriverAge:        age,
		DriverRace:       in.DriverRace,
		Violation:        in.Violation,
		SearchConducted:  searched,
		SearchType:       in.SearchType,
		IsArrested:       arrested,
		DrugsRelatedStop: drugs,
		StopDuration:     in.StopDuration,
		VehicleNumber:    in.VehicleNumber,
	}, nil
}

// normalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS
func normalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", NewValidationErrorWithValue("stop_time", "unparseable", s)
}

func parseFlag(field, value string) (bool, error) {
	switch strings.TrimSpace(value) {
	case "0", "":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, NewValidationErrorWithValue(field, "must be 0 or 1", value)
	}
}
