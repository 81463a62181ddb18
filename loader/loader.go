// Package loader appends the cleaned traffic-stop file to the police_stops table.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"police-dashboard/config"
	"police-dashboard/database"
	"police-dashboard/logging"
	"police-dashboard/metrics"
)

// Store is the part of the repository the loader writes through
type Store interface {
	InitSchema() error
	BulkInsert(ctx context.Context, stops []database.StopRecord, batchSize int) (int64, error)
}

// Loader reads the cleaned file and appends every row to police_stops
type Loader struct {
	cfg    *config.Config
	out    io.Writer
	verify func(ctx context.Context, dsn string) error
	open   func(dsn string) (*database.Database, error)
}

// New creates a loader that prints its outcome lines to stdout
func New(cfg *config.Config) *Loader {
	return &Loader{
		cfg:    cfg,
		out:    os.Stdout,
		verify: database.VerifyConnection,
		open:   database.Connect,
	}
}

// Run tests the connection, then loads the cleaned file. Every row is
// appended; an existing table is never truncated.
func (l *Loader) Run(ctx context.Context) error {
	dsn := l.cfg.DSN()
	if err := l.verify(ctx, dsn); err != nil {
		fmt.Fprintf(l.out, "❌ Error connecting to database: %v\n", err)
		return fmt.Errorf("database connection failed: %w", err)
	}
	fmt.Fprintln(l.out, "✅ Database connection successful")

	db, err := l.open(dsn)
	if err != nil {
		fmt.Fprintf(l.out, "❌ Error connecting to database: %v\n", err)
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	n, err := l.LoadFile(ctx, database.NewStopRepository(db), l.cfg.Data.CleanPath)
	if err != nil {
		fmt.Fprintf(l.out, "❌ Error loading data into SQL: %v\n", err)
		return err
	}
	fmt.Fprintf(l.out, "✅ Data loaded into SQL database successfully (%d rows)\n", n)
	return nil
}

// LoadFile parses the cleaned file at path and bulk-inserts it through store
func (l *Loader) LoadFile(ctx context.Context, store Store, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open cleaned file: %w", err)
	}
	defer f.Close()

	stops, err := ReadCleaned(f)
	if err != nil {
		return 0, err
	}

	if err := store.InitSchema(); err != nil {
		return 0, err
	}

	start := time.Now()
	n, err := store.BulkInsert(ctx, stops, l.cfg.Data.BatchSize)
	metrics.StopsInserted.WithLabelValues("loader").Add(float64(n))
	if err != nil {
		metrics.Errors.WithLabelValues("loader").Inc()
		return n, err
	}

	log := logging.With().Str("component", "loader").Logger()
	log.Info().
		Int64("rows", n).
		Int("batch_size", l.cfg.Data.BatchSize).
		Dur("elapsed", time.Since(start)).
		Msg("Bulk load finished")
	return n, nil
}

// ReadCleaned parses the cleaned CSV into stop records. Columns are matched by
// header name; unknown columns are ignored and missing ones stay zero.
func ReadCleaned(r io.Reader) ([]database.StopRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("cleaned file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var stops []database.StopRecord
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		stop, err := parseRow(rec, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

func parseRow(rec []string, index map[string]int) (database.StopRecord, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var stop database.StopRecord
	var err error

	if v := get("stop_date"); v != "" {
		t, perr := time.Parse("2006-01-02", v)
		if perr != nil {
			return stop, fmt.Errorf("invalid stop_date %q", v)
		}
		stop.StopDate = &t
	}
	if v := get("stop_time"); v != "" {
		stop.StopTime = &v
	}

	stop.CountryName = get("country_name")
	stop.DriverGender = get("driver_gender")
	stop.DriverRace = get("driver_race")
	stop.Violation = get("violation")
	stop.SearchType = get("search_type")
	stop.StopOutcome = get("stop_outcome")
	stop.StopDuration = get("stop_duration")
	stop.VehicleNumber = get("vehicle_number")

	if stop.DriverAge, err = parseAge(get("driver_age")); err != nil {
		return stop, err
	}
	if stop.SearchConducted, err = parseFlag("search_conducted", get("search_conducted")); err != nil {
		return stop, err
	}
	if stop.IsArrested, err = parseFlag("is_arrested", get("is_arrested")); err != nil {
		return stop, err
	}
	if stop.DrugsRelatedStop, err = parseFlag("drugs_related_stop", get("drugs_related_stop")); err != nil {
		return stop, err
	}
	return stop, nil
}

// parseAge accepts ages written as "35" or "35.0". A fractional age, such as
// the median of an even count, is rounded to the nearest year.
func parseAge(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid driver_age %q", v)
	}
	return int(math.Round(f)), nil
}

func parseFlag(col, v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	}
	return false, fmt.Errorf("invalid %s %q", col, v)
}
