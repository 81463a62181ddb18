package models

import (
	"time"

	"gorm.io/gorm"
)

// Driver genders offered by the insert form
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Stop duration buckets offered by the insert form
const (
	Duration0To15  = "0-15 Min"
	Duration15To30 = "15-30 Min"
	Duration30To60 = "30-60 Min"
	DurationOver60 = ">60 Min"
)

// Genders lists the form's gender choices in display order
var Genders = []string{GenderMale, GenderFemale, GenderOther}

// StopDurations lists the form's duration buckets in display order
var StopDurations = []string{Duration0To15, Duration15To30, Duration30To60, DurationOver60}

// StopRecord represents one traffic stop logged at a police check post.
//
// Key Fields:
//   - StopDate / StopTime: when the stop happened; either may be NULL when the
//     source value could not be parsed during preprocessing
//   - CountryName, DriverRace, Violation: categorical values used for grouping
//   - SearchConducted, IsArrested, DrugsRelatedStop: 0/1 flags in the source data
//   - StopDuration: one of the four StopDurations buckets
//   - VehicleNumber: plate identifier, not unique
//
// Rows are only ever appended (bulk loader or dashboard form), never updated.
type StopRecord struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StopDate         *time.Time `gorm:"column:stop_date;type:date;index" json:"stop_date"`
	StopTime         *string    `gorm:"column:stop_time;type:time" json:"stop_time"` // HH:MM:SS
	CountryName      string     `gorm:"column:country_name;size:100;index" json:"country_name"`
	DriverGender     string     `gorm:"column:driver_gender;size:20" json:"driver_gender"`
	DriverAge        int        `gorm:"column:driver_age" json:"driver_age"`
	DriverRace       string     `gorm:"column:driver_race;size:50" json:"driver_race"`
	Violation        string     `gorm:"column:violation;size:100;index" json:"violation"`
	SearchConducted  bool       `gorm:"column:search_conducted;not null" json:"search_conducted"`
	SearchType       string     `gorm:"column:search_type;size:100" json:"search_type"`
	StopOutcome      string     `gorm:"column:stop_outcome;size:50" json:"stop_outcome"`
	IsArrested       bool       `gorm:"column:is_arrested;not null" json:"is_arrested"`
	StopDuration     string     `gorm:"column:stop_duration;size:20" json:"stop_duration"`
	DrugsRelatedStop bool       `gorm:"column:drugs_related_stop;not null" json:"drugs_related_stop"`
	VehicleNumber    string     `gorm:"column:vehicle_number;size:50" json:"vehicle_number"`
}

// TableName specifies the table name for StopRecord
func (StopRecord) TableName() string {
	return "police_stops"
}

// AfterFind trims the driver's fractional seconds so a stored stop time reads
// back exactly as written.
func (s *StopRecord) AfterFind(tx *gorm.DB) error {
	if s.StopTime != nil {
		clock := NormalizeClock(*s.StopTime)
		s.StopTime = &clock
	}
	return nil
}

// NormalizeClock formats a time-of-day value as HH:MM:SS. Values that are not
// a time of day are returned unchanged.
func NormalizeClock(v string) string {
	t, err := time.Parse("15:04:05", v)
	if err != nil {
		return v
	}
	return t.Format("15:04:05")
}

// StopInput is the raw submission of the "Add New Police Log" form.
// Every value arrives as text, exactly as typed or picked in the form widgets.
type StopInput struct {
	StopDate         string `json:"stop_date"` // YYYY-MM-DD
	StopTime         string `json:"stop_time"` // HH:MM or HH:MM:SS
	CountryName      string `json:"country_name"`
	DriverGender     string `json:"driver_gender"`
	DriverAge        string `json:"driver_age"`
	DriverRace       string `json:"driver_race"`
	Violation        string `json:"violation"`
	SearchConducted  string `json:"search_conducted"` // "0" or "1"
	SearchType       string `json:"search_type"`
	IsArrested       string `json:"is_arrested"`
	DrugsRelatedStop string `json:"drugs_related_stop"`
	StopDuration     string `json:"stop_duration"`
	VehicleNumber    string `json:"vehicle_number"`
}
