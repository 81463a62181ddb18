package database

import (
	"testing"
)

func validInput() StopInput {
	return StopInput{
		StopDate:         "2020-01-05",
		StopTime:         "08:30",
		CountryName:      "Canada",
		DriverGender:     "female",
		DriverAge:        "34",
		DriverRace:       "Asian",
		Violation:        "Speeding",
		SearchConducted:  "1",
		SearchType:       "Vehicle Search",
		IsArrested:       "0",
		DrugsRelatedStop: "1",
		StopDuration:     "15-30 Min",
		VehicleNumber:    "KA01AB1234",
	}
}

func TestParseStopInputValid(t *testing.T) {
	rec, err := ParseStopInput(validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.StopDate.Format("2006-01-02"); got != "2020-01-05" {
		t.Errorf("expected stop date 2020-01-05, got %s", got)
	}
	if *rec.StopTime != "08:30:00" {
		t.Errorf("expected stop time 08:30:00, got %s", *rec.StopTime)
	}
	if rec.DriverAge != 34 {
		t.Errorf("expected age 34, got %d", rec.DriverAge)
	}
	if !rec.SearchConducted || rec.IsArrested || !rec.DrugsRelatedStop {
		t.Errorf("flags mismatch: %+v", rec)
	}
	if rec.VehicleNumber != "KA01AB1234" || rec.CountryName != "Canada" {
		t.Errorf("text fields not copied: %+v", rec)
	}
}

func TestParseStopInputRejectsWidgetViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *StopInput)
		field  string
	}{
		{name: "bad date", mutate: func(in *StopInput) { in.StopDate = "05/01/2020" }, field: "stop_date"},
		{name: "bad time", mutate: func(in *StopInput) { in.StopTime = "25:99" }, field: "stop_time"},
		{name: "age too high", mutate: func(in *StopInput) { in.DriverAge = "121" }, field: "driver_age"},
		{name: "negative age", mutate: func(in *StopInput) { in.DriverAge = "-1" }, field: "driver_age"},
		{name: "fractional age", mutate: func(in *StopInput) { in.DriverAge = "30.5" }, field: "driver_age"},
		{name: "unknown gender", mutate: func(in *StopInput) { in.DriverGender = "M" }, field: "driver_gender"},
		{name: "unknown duration", mutate: func(in *StopInput) { in.StopDuration = "2h" }, field: "stop_duration"},
		{name: "bad flag", mutate: func(in *StopInput) { in.IsArrested = "yes" }, field: "is_arrested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := ParseStopInput(in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve := err.(*ValidationError); ve.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestParseStopInputAcceptsSeconds(t *testing.T) {
	in := validInput()
	in.StopTime = "23:59:59"
	rec, err := ParseStopInput(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *rec.StopTime != "23:59:59" {
		t.Errorf("expected 23:59:59, got %s", *rec.StopTime)
	}
}
