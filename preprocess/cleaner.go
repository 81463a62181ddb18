// Package preprocess turns the raw traffic-stop export into the cleaned file
// the loader bulk-loads: empty columns dropped, gaps filled, dates and times
// normalized, columns projected onto the police_stops allow-list.
package preprocess

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// nan is gota's textual marker for a missing value
const nan = "NaN"

// Placeholders written into gaps of categorical columns
const (
	UnknownPlaceholder = "Unknown"
	UnknownVehicle     = "UNKNOWN"
)

// AllowedColumns is the police_stops column set, in output order
var AllowedColumns = []string{
	"stop_date", "stop_time", "country_name", "driver_gender",
	"driver_age", "driver_race", "violation", "search_conducted",
	"search_type", "stop_outcome", "is_arrested", "stop_duration",
	"drugs_related_stop", "vehicle_number",
}

// missingValues are the raw cell values treated as missing
var missingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
}

var clockLayouts = []string{"15:04", "15:04:05"}

// Stats summarizes one preprocessing run
type Stats struct {
	Rows           int      `json:"rows"`
	Columns        []string `json:"columns"`
	DroppedColumns []string `json:"dropped_columns"`
	AgeMedian      float64  `json:"age_median"`
	AgesFilled     int      `json:"ages_filled"`
	NullDates      int      `json:"null_dates"`
	NullTimes      int      `json:"null_times"`
}

// CleanFile reads the raw file at inPath and writes the cleaned file to
// outPath, creating the output directory when needed.
func CleanFile(inPath, outPath string) (Stats, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, fmt.Errorf("open raw file: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Stats{}, fmt.Errorf("create output directory: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("create cleaned file: %w", err)
	}

	stats, err := Clean(in, out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close cleaned file: %w", closeErr)
	}
	return stats, err
}

// Clean applies every preprocessing step to the CSV read from r and writes
// the cleaned CSV to w. Ragged rows and malformed cells never abort the run;
// they become nulls or placeholders and every input row is kept.
func Clean(r io.Reader, w io.Writer) (Stats, error) {
	records, err := readRaw(r)
	if err != nil {
		return Stats{}, err
	}
	if len(records) == 1 {
		return headerOnly(records[0], w)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return Stats{}, fmt.Errorf("load raw records: %w", df.Err)
	}

	var stats Stats
	df, stats.DroppedColumns = dropEmptyColumns(df)

	if hasColumn(df, "driver_age") {
		var ages series.Series
		ages, stats.AgeMedian, stats.AgesFilled = fillMedian(df.Col("driver_age"))
		df = df.Mutate(ages)
	}
	if hasColumn(df, "driver_gender") {
		df = df.Mutate(fillConstant(df.Col("driver_gender"), UnknownPlaceholder))
	}
	if hasColumn(df, "violation") {
		df = df.Mutate(fillConstant(df.Col("violation"), UnknownPlaceholder))
	}
	if hasColumn(df, "vehicle_number") {
		df = df.Mutate(fillConstant(df.Col("vehicle_number"), UnknownVehicle))
	}
	if hasColumn(df, "stop_date") {
		var dates series.Series
		dates, stats.NullDates = normalize(df.Col("stop_date"), ParseDate)
		df = df.Mutate(dates)
	}
	if hasColumn(df, "stop_time") {
		var clocks series.Series
		clocks, stats.NullTimes = normalize(df.Col("stop_time"), ParseClock)
		df = df.Mutate(clocks)
	}

	keep := make([]string, 0, len(AllowedColumns))
	for _, col := range AllowedColumns {
		if hasColumn(df, col) {
			keep = append(keep, col)
		}
	}
	if len(keep) == 0 {
		return stats, fmt.Errorf("raw file has none of the expected columns")
	}
	df = df.Select(keep)
	if df.Err != nil {
		return stats, fmt.Errorf("project columns: %w", df.Err)
	}

	stats.Rows = df.Nrow()
	stats.Columns = keep

	if err := writeRecords(w, df.Records()); err != nil {
		return stats, err
	}
	return stats, nil
}

// readRaw reads every raw record. Rows shorter than the header are padded
// with empty cells and longer rows are cut to the header width.
func readRaw(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read raw csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("raw file is empty")
	}

	width := len(records[0])
	for i, rec := range records[1:] {
		switch {
		case len(rec) < width:
			padded := make([]string, width)
			copy(padded, rec)
			records[i+1] = padded
		case len(rec) > width:
			records[i+1] = rec[:width]
		}
	}
	return records, nil
}

// headerOnly writes the allow-listed columns of a raw file without data rows
func headerOnly(header []string, w io.Writer) (Stats, error) {
	var keep []string
	for _, col := range AllowedColumns {
		if slices.Contains(header, col) {
			keep = append(keep, col)
		}
	}
	if len(keep) == 0 {
		return Stats{}, fmt.Errorf("raw file has none of the expected columns")
	}
	stats := Stats{Columns: keep}
	return stats, writeRecords(w, [][]string{keep})
}

// dropEmptyColumns removes columns whose every cell is missing
func dropEmptyColumns(df dataframe.DataFrame) (dataframe.DataFrame, []string) {
	var keep, dropped []string
	for _, name := range df.Names() {
		if allMissing(df.Col(name)) {
			dropped = append(dropped, name)
			continue
		}
		keep = append(keep, name)
	}
	if len(dropped) == 0 {
		return df, nil
	}
	return df.Select(keep), dropped
}

func allMissing(s series.Series) bool {
	for _, isNaN := range s.IsNaN() {
		if !isNaN {
			return false
		}
	}
	return true
}

// fillMedian replaces missing or non-numeric ages with the median of the
// parseable ones. Ages are written back as text, without a fraction when whole.
func fillMedian(s series.Series) (series.Series, float64, int) {
	raw := s.Records()
	numeric := series.New(raw, series.Float, s.Name)

	var valid []int
	for i, isNaN := range numeric.IsNaN() {
		if !isNaN {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		return s, 0, 0
	}

	median := numeric.Subset(valid).Median()
	filled := 0
	out := make([]string, len(raw))
	floats := numeric.Float()
	for i, v := range floats {
		if numeric.Elem(i).IsNA() {
			v = median
			filled++
		}
		out[i] = formatNumber(v)
	}
	return series.New(out, series.String, s.Name), median, filled
}

// fillConstant replaces missing cells with value
func fillConstant(s series.Series, value string) series.Series {
	out := s.Records()
	for i, isNaN := range s.IsNaN() {
		if isNaN {
			out[i] = value
		}
	}
	return series.New(out, series.String, s.Name)
}

// normalize rewrites each cell with parse; cells parse rejects become missing
func normalize(s series.Series, parse func(string) (string, bool)) (series.Series, int) {
	raw := s.Records()
	isNaN := s.IsNaN()
	nulls := 0
	out := make([]string, len(raw))
	for i, v := range raw {
		if isNaN[i] {
			out[i] = nan
			nulls++
			continue
		}
		parsed, ok := parse(v)
		if !ok {
			out[i] = nan
			nulls++
			continue
		}
		out[i] = parsed
	}
	return series.New(out, series.String, s.Name), nulls
}

// ParseDate normalizes a stop date to YYYY-MM-DD
func ParseDate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParseClock normalizes a stop time to HH:MM:SS
func ParseClock(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	return slices.Contains(df.Names(), name)
}

// writeRecords writes header and rows, turning gota's NaN marker into an
// empty cell
func writeRecords(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	for _, rec := range records {
		for i, v := range rec {
			if v == nan {
				rec[i] = ""
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write cleaned csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write cleaned csv: %w", err)
	}
	return nil
}
