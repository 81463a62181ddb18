package types

// ReportRow is one line of the country/violation summary report
type ReportRow struct {
	CountryName    string `json:"country_name" gorm:"column:country_name"`
	Violation      string `json:"violation" gorm:"column:violation"`
	ViolationCount int64  `json:"violation_count" gorm:"column:violation_count"`
	TotalArrests   int64  `json:"total_arrests" gorm:"column:total_arrests"`
	DrugCases      int64  `json:"drug_cases" gorm:"column:drug_cases"`
}

// ReportColumns are the report query's column names, in order
var ReportColumns = []string{"country_name", "violation", "violation_count", "total_arrests", "drug_cases"}

// ResultSet is the tabular result of a named query
type ResultSet struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Len returns the number of result rows
func (r *ResultSet) Len() int {
	return len(r.Rows)
}

// Value returns the cell at row i for the named column, or nil if absent
func (r *ResultSet) Value(i int, column string) interface{} {
	if i < 0 || i >= len(r.Rows) {
		return nil
	}
	for j, c := range r.Columns {
		if c == column {
			return r.Rows[i][j]
		}
	}
	return nil
}

// DistinctOptions holds the dropdown lists of the insert form
type DistinctOptions struct {
	Countries  []string `json:"countries"`
	Races      []string `json:"races"`
	Violations []string `json:"violations"`
}
