//go:build integration

package database

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"police-dashboard/config"
	"police-dashboard/database/types"
	"police-dashboard/report"
)

const fixtureRows = 100

// startPostgres runs a throwaway PostgreSQL and returns its DSN
func startPostgres(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "police",
			"POSTGRES_PASSWORD": "police",
			"POSTGRES_DB":       "police_db",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("create postgres container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background()) //nolint:errcheck
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("get mapped port: %v", err)
	}

	cfg := &config.Config{
		DatabaseHost:     host,
		DatabasePort:     port.Port(),
		DatabaseName:     "police_db",
		DatabaseUser:     "police",
		DatabasePassword: "police",
		DatabaseSSLMode:  "disable",
	}
	return cfg.DSN()
}

// fixtureStops builds a deterministic spread of stops over three countries,
// four violations, two years and all hours of the day
func fixtureStops() []StopRecord {
	countries := []string{"Canada", "India", "USA"}
	violations := []string{"DUI", "Seatbelt", "Speeding", "Signal"}
	races := []string{"Asian", "Black", "Hispanic", "White"}
	genders := []string{"male", "female"}

	stops := make([]StopRecord, 0, fixtureRows)
	for i := 0; i < fixtureRows; i++ {
		date := time.Date(2020+i%2, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC)
		clock := fmt.Sprintf("%02d:%02d:00", i%24, i%60)
		stops = append(stops, StopRecord{
			StopDate:         &date,
			StopTime:         &clock,
			CountryName:      countries[i%len(countries)],
			DriverGender:     genders[i%len(genders)],
			DriverAge:        18 + i%50,
			DriverRace:       races[i%len(races)],
			Violation:        violations[i%len(violations)],
			SearchConducted:  i%3 == 0,
			SearchType:       "Frisk",
			StopOutcome:      "Ticket",
			IsArrested:       i%5 == 0,
			StopDuration:     "0-15 Min",
			DrugsRelatedStop: i%7 == 0,
			VehicleNumber:    fmt.Sprintf("KA%02dAB%04d", i%10, i%13),
		})
	}
	return stops
}

func setupRepository(t *testing.T) *StopRepository {
	t.Helper()
	dsn := startPostgres(t)

	ctx := context.Background()
	if err := VerifyConnection(ctx, dsn); err != nil {
		t.Fatalf("VerifyConnection failed: %v", err)
	}

	db, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewStopRepository(db)
	if err := repo.InitSchema(); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	n, err := repo.BulkInsert(ctx, fixtureStops(), 30)
	if err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}
	if n != fixtureRows {
		t.Fatalf("BulkInsert wrote %d rows, want %d", n, fixtureRows)
	}
	return repo
}

func TestRepositoryIntegration(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	t.Run("every named query ranks the fixture", func(t *testing.T) {
		tests := []struct {
			name      string
			column    string
			wantRows  int
			wantFirst string
		}{
			{"Top 10 Vehicles Involved in Drug-Related Stops", "vehicle_number", 10, "KA00AB0000"},
			{"Vehicles Most Frequently Searched", "vehicle_number", 10, "KA00AB0000"},
			{"Driver Age Group with Highest Arrest Rate", "driver_age", 10, "18"},
			{"Gender Distribution by Country", "driver_gender", 6, "female"},
			{"Race & Gender Combination with Highest Search Rate", "driver_race", 4, "Asian"},
			{"Most Common Violations Among Drivers <25", "violation", 4, "DUI"},
			{"Countries with Highest Drug-Related Stops", "country_name", 3, "Canada"},
			{"Yearly Breakdown of Stops and Arrests by Country", "country_name", 6, "Canada"},
			{"Driver Violation Trends Based on Age and Race", "driver_age", 20, "18"},
			{"Time Period Analysis of Stops (Year, Month, Hour)", "stop_count", 24, "5"},
			{"Violations with High Search and Arrest Rates", "violation", 4, "DUI"},
			{"Driver Demographics by Country", "driver_race", 12, "White"},
			{"Top 5 Violations with Highest Arrest Rates", "violation", 4, "DUI"},
			{"Peak Hours for Traffic Stops", "hour", 5, "0"},
		}
		if len(tests) != len(NamedQueries()) {
			t.Fatalf("expectations cover %d queries, catalog has %d", len(tests), len(NamedQueries()))
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := repo.RunNamedQuery(ctx, tt.name, nil)
				if err != nil {
					t.Fatal(err)
				}
				if result.Len() != tt.wantRows {
					t.Errorf("rows = %d, want %d", result.Len(), tt.wantRows)
				}
				if got := fmt.Sprint(result.Value(0, tt.column)); got != tt.wantFirst {
					t.Errorf("first %s = %s, want %s", tt.column, got, tt.wantFirst)
				}
			})
		}
	})

	t.Run("limit override applies", func(t *testing.T) {
		result, err := repo.RunNamedQuery(ctx, "Vehicles Most Frequently Searched", map[string]int{"limit": 2})
		if err != nil {
			t.Fatal(err)
		}
		if result.Len() != 2 {
			t.Errorf("expected 2 rows, got %d", result.Len())
		}
	})

	t.Run("unknown query", func(t *testing.T) {
		_, err := repo.RunNamedQuery(ctx, "nope", nil)
		if !IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("form round trip", func(t *testing.T) {
		stop, err := ParseStopInput(StopInput{
			StopDate:         "2024-03-01",
			StopTime:         "14:30",
			CountryName:      "Canada",
			DriverGender:     "female",
			DriverAge:        "42",
			DriverRace:       "Asian",
			Violation:        "Speeding",
			SearchConducted:  "1",
			SearchType:       "Vehicle Search",
			IsArrested:       "0",
			DrugsRelatedStop: "1",
			StopDuration:     "30-60 Min",
			VehicleNumber:    "TN09ZZ0001",
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.InsertStop(ctx, stop); err != nil {
			t.Fatalf("InsertStop failed: %v", err)
		}

		got, err := repo.GetStop(ctx, stop.ID)
		if err != nil {
			t.Fatalf("GetStop failed: %v", err)
		}
		if got.StopDate == nil || !got.StopDate.Equal(*stop.StopDate) {
			t.Errorf("stop_date = %v, want %v", got.StopDate, stop.StopDate)
		}
		if got.StopTime == nil || *got.StopTime != "14:30:00" {
			t.Errorf("stop_time = %v, want 14:30:00", got.StopTime)
		}

		// dates compare by instant; everything else must match exactly
		want := *stop
		read := *got
		want.StopDate, read.StopDate = nil, nil
		if !reflect.DeepEqual(read, want) {
			t.Errorf("stored row differs from submitted one:\n got  %+v\n want %+v", read, want)
		}
	})

	t.Run("dropdown values", func(t *testing.T) {
		opts := repo.DistinctOptions(ctx)
		if !slices.Equal(opts.Countries, []string{"Canada", "India", "USA"}) {
			t.Errorf("countries = %v", opts.Countries)
		}
		if !slices.IsSorted(opts.Violations) {
			t.Errorf("violations not ordered: %v", opts.Violations)
		}
		if _, err := repo.DistinctValues(ctx, "vehicle_number"); !IsValidation(err) {
			t.Errorf("expected validation error for non-dropdown column, got %v", err)
		}
	})

	t.Run("report matches export", func(t *testing.T) {
		rows, err := repo.Report(ctx)
		if err != nil {
			t.Fatal(err)
		}

		count, err := repo.CountStops(ctx)
		if err != nil {
			t.Fatal(err)
		}
		var total int64
		for i, r := range rows {
			total += r.ViolationCount
			if i > 0 && r.ViolationCount > rows[i-1].ViolationCount {
				t.Errorf("report not ordered by violation_count at row %d", i)
			}
		}
		if total != count {
			t.Errorf("report covers %d stops, table has %d", total, count)
		}

		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, rows); err != nil {
			t.Fatal(err)
		}
		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(records[0], types.ReportColumns) {
			t.Errorf("export header = %v", records[0])
		}
		if len(records)-1 != len(rows) {
			t.Errorf("export has %d lines, report has %d rows", len(records)-1, len(rows))
		}
	})
}
