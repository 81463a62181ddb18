package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"police-dashboard/database/types"
)

// Download names offered by the Reports tab
const (
	CSVFilename  = "police_report.csv"
	XLSXFilename = "police_report.xlsx"
	SheetName    = "Report"
)

// values returns the row's cells in ReportColumns order
func values(r Row) []interface{} {
	return []interface{}{r.CountryName, r.Violation, r.ViolationCount, r.TotalArrests, r.DrugCases}
}

// WriteCSV writes the report with exactly the query's columns as header and
// one line per row
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.ReportColumns); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.CountryName,
			r.Violation,
			strconv.FormatInt(r.ViolationCount, 10),
			strconv.FormatInt(r.TotalArrests, 10),
			strconv.FormatInt(r.DrugCases, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV into a single "Report" sheet
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, name := range types.ReportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return fmt.Errorf("write report header: %w", err)
		}
	}

	for rowIdx, r := range rows {
		for colIdx, val := range values(r) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(SheetName, cell, val); err != nil {
				return fmt.Errorf("write report row %d: %w", rowIdx+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
