// Package report derives the Reports tab charts from the country/violation
// summary and renders the summary as CSV or XLSX downloads.
package report

import (
	"sort"

	"police-dashboard/database/types"
)

// TopViolationsLimit caps the horizontal bar chart
const TopViolationsLimit = 10

// Row is one line of the summary report
type Row = types.ReportRow

// Slice is a labelled total used by the pie, bar and line charts
type Slice struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Bubble is one violation on the arrests vs violations chart. Size mirrors
// the arrest count.
type Bubble struct {
	Violation      string `json:"violation"`
	ViolationCount int64  `json:"violation_count"`
	TotalArrests   int64  `json:"total_arrests"`
	Size           int64  `json:"size"`
}

// Charts holds the four projections shown under the summary table
type Charts struct {
	CountryShare        []Slice  `json:"country_share"`
	TopViolations       []Slice  `json:"top_violations"`
	ArrestsVsViolations []Bubble `json:"arrests_vs_violations"`
	DrugsByCountry      []Slice  `json:"drugs_by_country"`
}

// Build aggregates the report rows into chart series.
// Country and violation groups are ordered by name; the top violations are
// ordered by count with ties broken by name.
func Build(rows []Row) Charts {
	countryTotals := map[string]int64{}
	countryDrugs := map[string]int64{}
	violationTotals := map[string]int64{}
	violationArrests := map[string]int64{}

	for _, r := range rows {
		countryTotals[r.CountryName] += r.ViolationCount
		countryDrugs[r.CountryName] += r.DrugCases
		violationTotals[r.Violation] += r.ViolationCount
		violationArrests[r.Violation] += r.TotalArrests
	}

	charts := Charts{
		CountryShare:        byLabel(countryTotals),
		DrugsByCountry:      byLabel(countryDrugs),
		ArrestsVsViolations: []Bubble{},
	}

	top := byLabel(violationTotals)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Value > top[j].Value
	})
	if len(top) > TopViolationsLimit {
		top = top[:TopViolationsLimit]
	}
	charts.TopViolations = top

	for _, v := range byLabel(violationTotals) {
		arrests := violationArrests[v.Label]
		charts.ArrestsVsViolations = append(charts.ArrestsVsViolations, Bubble{
			Violation:      v.Label,
			ViolationCount: v.Value,
			TotalArrests:   arrests,
			Size:           arrests,
		})
	}
	return charts
}

// byLabel turns a totals map into name-ordered slices
func byLabel(totals map[string]int64) []Slice {
	out := make([]Slice, 0, len(totals))
	for label, value := range totals {
		out = append(out, Slice{Label: label, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Label < out[j].Label
	})
	return out
}
