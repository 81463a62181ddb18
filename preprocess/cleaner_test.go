package preprocess

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const rawFixture = `stop_date,stop_time,country_name,driver_gender,driver_age_raw,driver_age,driver_race,violation,search_conducted,search_type,stop_outcome,is_arrested,stop_duration,drugs_related_stop,vehicle_number,county_name
1/2/2020,10:15,Canada,M,33,30,Asian,Speeding,False,,Ticket,False,0-15 Min,False,KA01AB1234,
2020-01-03,25:61,India,,41,,White,,True,Vehicle Search,Arrest,True,16-30 Min,True,,
not-a-date,08:05,USA,F,abc,50,Black,DUI,False,,Warning,False,30+ Min,False,TN09ZZ0001,
2020/01/04,,Canada,M,22,22,Hispanic,Seatbelt,True,Frisk,Ticket,False,0-15 Min,True,KA01AB1234,
`

func cleanFixture(t *testing.T, raw string) ([][]string, Stats) {
	t.Helper()
	var out bytes.Buffer
	stats, err := Clean(strings.NewReader(raw), &out)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	records, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatalf("cleaned output is not valid csv: %v", err)
	}
	return records, stats
}

func column(records [][]string, name string) []string {
	idx := slices.Index(records[0], name)
	if idx < 0 {
		return nil
	}
	var out []string
	for _, row := range records[1:] {
		out = append(out, row[idx])
	}
	return out
}

func TestCleanProjectsToAllowList(t *testing.T) {
	records, stats := cleanFixture(t, rawFixture)

	for _, col := range records[0] {
		if !slices.Contains(AllowedColumns, col) {
			t.Errorf("column %q is not in the allow-list", col)
		}
	}
	if slices.Contains(records[0], "county_name") {
		t.Error("all-empty column county_name should be dropped")
	}
	if !slices.Contains(stats.DroppedColumns, "county_name") {
		t.Errorf("expected county_name in dropped columns, got %v", stats.DroppedColumns)
	}
	if records[0][0] != "stop_date" || records[0][len(records[0])-1] != "vehicle_number" {
		t.Errorf("columns not in allow-list order: %v", records[0])
	}
}

func TestCleanPreservesRowCount(t *testing.T) {
	records, stats := cleanFixture(t, rawFixture)
	if len(records)-1 != 4 || stats.Rows != 4 {
		t.Errorf("expected 4 rows, got %d (stats %d)", len(records)-1, stats.Rows)
	}
}

func TestCleanFillsGaps(t *testing.T) {
	records, stats := cleanFixture(t, rawFixture)

	// median of 30, 50, 22 is 30
	if got := column(records, "driver_age"); !slices.Equal(got, []string{"30", "30", "50", "22"}) {
		t.Errorf("unexpected ages %v", got)
	}
	if stats.AgeMedian != 30 || stats.AgesFilled != 1 {
		t.Errorf("unexpected age stats: median %v filled %d", stats.AgeMedian, stats.AgesFilled)
	}
	if got := column(records, "driver_gender"); got[1] != UnknownPlaceholder {
		t.Errorf("expected gender placeholder, got %q", got[1])
	}
	if got := column(records, "violation"); got[1] != UnknownPlaceholder {
		t.Errorf("expected violation placeholder, got %q", got[1])
	}
	if got := column(records, "vehicle_number"); got[1] != UnknownVehicle {
		t.Errorf("expected vehicle placeholder, got %q", got[1])
	}
	if got := column(records, "search_type"); got[0] != "" {
		t.Errorf("search_type has no fill rule and should stay empty, got %q", got[0])
	}
}

func TestCleanNormalizesDatesAndTimes(t *testing.T) {
	records, stats := cleanFixture(t, rawFixture)

	if got := column(records, "stop_date"); !slices.Equal(got, []string{"2020-01-02", "2020-01-03", "", "2020-01-04"}) {
		t.Errorf("unexpected dates %v", got)
	}
	if got := column(records, "stop_time"); !slices.Equal(got, []string{"10:15:00", "", "08:05:00", ""}) {
		t.Errorf("unexpected times %v", got)
	}
	if stats.NullDates != 1 || stats.NullTimes != 2 {
		t.Errorf("unexpected null counts: dates %d times %d", stats.NullDates, stats.NullTimes)
	}
}

func TestCleanIsDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	if _, err := Clean(strings.NewReader(rawFixture), &first); err != nil {
		t.Fatal(err)
	}
	if _, err := Clean(strings.NewReader(rawFixture), &second); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two runs over the same input produced different output")
	}
}

func TestCleanRejectsUnrelatedFile(t *testing.T) {
	var out bytes.Buffer
	_, err := Clean(strings.NewReader("a,b\n1,2\n"), &out)
	if err == nil {
		t.Error("expected error for a file without any stop columns")
	}
}

func TestCleanKeepsRaggedRows(t *testing.T) {
	raw := "stop_date,stop_time,country_name,driver_age,violation\n" +
		"1/2/2020,10:15,Canada,30,Speeding\n" +
		"2020-01-03,11:00,India\n" +
		"2020-01-04,12:00,USA,40,DUI,extra\n"

	records, stats := cleanFixture(t, raw)
	if len(records)-1 != 3 || stats.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d (stats %d)", len(records)-1, stats.Rows)
	}
	if got := column(records, "country_name"); !slices.Equal(got, []string{"Canada", "India", "USA"}) {
		t.Errorf("unexpected countries %v", got)
	}
	// the short row's missing cells are filled like any other gap
	if got := column(records, "driver_age"); !slices.Equal(got, []string{"30", "35", "40"}) {
		t.Errorf("unexpected ages %v", got)
	}
	if got := column(records, "violation"); got[1] != UnknownPlaceholder {
		t.Errorf("expected violation placeholder, got %q", got[1])
	}
}

func TestCleanHeaderOnly(t *testing.T) {
	raw := "stop_date,country_name,county_name\n"

	records, stats := cleanFixture(t, raw)
	if len(records) != 1 {
		t.Fatalf("expected only a header, got %d records", len(records))
	}
	if !slices.Equal(records[0], []string{"stop_date", "country_name"}) {
		t.Errorf("unexpected header %v", records[0])
	}
	if stats.Rows != 0 {
		t.Errorf("expected 0 rows, got %d", stats.Rows)
	}
}

func TestCleanRejectsEmptyFile(t *testing.T) {
	var out bytes.Buffer
	if _, err := Clean(strings.NewReader(""), &out); err == nil {
		t.Error("expected error for an empty file")
	}
}

func TestCleanFileCreatesOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "policedata.csv")
	if err := os.WriteFile(in, []byte(rawFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "data", "nested", "clean_stops.csv")

	stats, err := CleanFile(in, out)
	if err != nil {
		t.Fatalf("CleanFile failed: %v", err)
	}
	if stats.Rows != 4 {
		t.Errorf("expected 4 rows, got %d", stats.Rows)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("cleaned file missing: %v", err)
	}
}

func TestParseDate(t *testing.T) {
	tests := map[string]string{
		"2005-01-02":          "2005-01-02",
		"1/2/2005":            "2005-01-02",
		"2005/01/02":          "2005-01-02",
		"2005-01-02 10:00:00": "2005-01-02",
	}
	for in, want := range tests {
		got, ok := ParseDate(in)
		if !ok || got != want {
			t.Errorf("ParseDate(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseDate("yesterday"); ok {
		t.Error("ParseDate should reject free text")
	}
}
