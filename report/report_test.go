package report

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"police-dashboard/database/types"
)

var sampleRows = []Row{
	{CountryName: "Canada", Violation: "Speeding", ViolationCount: 12, TotalArrests: 2, DrugCases: 1},
	{CountryName: "India", Violation: "Speeding", ViolationCount: 8, TotalArrests: 3, DrugCases: 0},
	{CountryName: "India", Violation: "DUI", ViolationCount: 5, TotalArrests: 4, DrugCases: 2},
	{CountryName: "USA", Violation: "Seatbelt", ViolationCount: 5, TotalArrests: 0, DrugCases: 1},
}

func TestBuildCharts(t *testing.T) {
	charts := Build(sampleRows)

	wantShare := []Slice{{"Canada", 12}, {"India", 13}, {"USA", 5}}
	if !reflect.DeepEqual(charts.CountryShare, wantShare) {
		t.Errorf("CountryShare = %v, want %v", charts.CountryShare, wantShare)
	}

	// DUI and Seatbelt tie at 5 and keep name order
	wantTop := []Slice{{"Speeding", 20}, {"DUI", 5}, {"Seatbelt", 5}}
	if !reflect.DeepEqual(charts.TopViolations, wantTop) {
		t.Errorf("TopViolations = %v, want %v", charts.TopViolations, wantTop)
	}

	wantBubbles := []Bubble{
		{Violation: "DUI", ViolationCount: 5, TotalArrests: 4, Size: 4},
		{Violation: "Seatbelt", ViolationCount: 5, TotalArrests: 0, Size: 0},
		{Violation: "Speeding", ViolationCount: 20, TotalArrests: 5, Size: 5},
	}
	if !reflect.DeepEqual(charts.ArrestsVsViolations, wantBubbles) {
		t.Errorf("ArrestsVsViolations = %v, want %v", charts.ArrestsVsViolations, wantBubbles)
	}

	wantDrugs := []Slice{{"Canada", 1}, {"India", 2}, {"USA", 1}}
	if !reflect.DeepEqual(charts.DrugsByCountry, wantDrugs) {
		t.Errorf("DrugsByCountry = %v, want %v", charts.DrugsByCountry, wantDrugs)
	}
}

func TestBuildCapsTopViolations(t *testing.T) {
	var rows []Row
	for _, v := range strings.Split("a b c d e f g h i j k l", " ") {
		rows = append(rows, Row{CountryName: "X", Violation: v, ViolationCount: 1})
	}
	charts := Build(rows)
	if len(charts.TopViolations) != TopViolationsLimit {
		t.Errorf("expected %d top violations, got %d", TopViolationsLimit, len(charts.TopViolations))
	}
	if charts.TopViolations[0].Label != "a" {
		t.Errorf("ties should be broken by name, got %q first", charts.TopViolations[0].Label)
	}
}

func TestBuildEmpty(t *testing.T) {
	charts := Build(nil)
	if len(charts.CountryShare) != 0 || len(charts.TopViolations) != 0 ||
		len(charts.ArrestsVsViolations) != 0 || len(charts.DrugsByCountry) != 0 {
		t.Errorf("expected empty charts, got %+v", charts)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if !reflect.DeepEqual(records[0], types.ReportColumns) {
		t.Errorf("header = %v, want %v", records[0], types.ReportColumns)
	}
	if len(records)-1 != len(sampleRows) {
		t.Errorf("expected %d data lines, got %d", len(sampleRows), len(records)-1)
	}
	if got := strings.Join(records[3], ","); got != "India,DUI,5,4,2" {
		t.Errorf("unexpected row %q", got)
	}
}

func TestWriteCSVEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "country_name,violation,violation_count,total_arrests,drug_cases\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleRows); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("sheet %q missing: %v", SheetName, err)
	}
	if !reflect.DeepEqual(rows[0], types.ReportColumns) {
		t.Errorf("header = %v, want %v", rows[0], types.ReportColumns)
	}
	if len(rows)-1 != len(sampleRows) {
		t.Errorf("expected %d data rows, got %d", len(sampleRows), len(rows)-1)
	}
	if rows[1][0] != "Canada" || rows[1][2] != "12" {
		t.Errorf("unexpected first row %v", rows[1])
	}
}
