package database

// QueryParam is a named placeholder (@name) inside a NamedQuery's SQL
type QueryParam struct {
	Name    string `json:"name"`
	Default int    `json:"default"`
}

// NamedQuery is one entry of the Insights menu
type NamedQuery struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	SQL         string       `json:"sql"`
	Params      []QueryParam `json:"params,omitempty"`
}

// Args returns the parameter map for the query, applying overrides only for
// declared parameters. Undeclared keys are ignored.
func (q NamedQuery) Args(overrides map[string]int) map[string]interface{} {
	if len(q.Params) == 0 {
		return nil
	}
	args := make(map[string]interface{}, len(q.Params))
	for _, p := range q.Params {
		value := p.Default
		if v, ok := overrides[p.Name]; ok {
			value = v
		}
		args[p.Name] = value
	}
	return args
}

// namedQueries is the Insights menu in display order.
// Ties in ORDER BY are broken by the grouping key so results are stable.
var namedQueries = []NamedQuery{
	{
		Name:        "Top 10 Vehicles Involved in Drug-Related Stops",
		Description: "Vehicles that appear most often in drug-related stops",
		SQL: `SELECT vehicle_number, COUNT(*) AS drug_stop_count
			FROM police_stops
			WHERE drugs_related_stop
			GROUP BY vehicle_number
			ORDER BY drug_stop_count DESC, vehicle_number
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 10}},
	},
	{
		Name:        "Vehicles Most Frequently Searched",
		Description: "Vehicles with the most stops that included a search",
		SQL: `SELECT vehicle_number, COUNT(*) AS search_count
			FROM police_stops
			WHERE search_conducted
			GROUP BY vehicle_number
			ORDER BY search_count DESC, vehicle_number
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 10}},
	},
	{
		Name:        "Driver Age Group with Highest Arrest Rate",
		Description: "Driver ages ranked by number of arrests",
		SQL: `SELECT driver_age, SUM(is_arrested::int) AS arrests
			FROM police_stops
			GROUP BY driver_age
			ORDER BY arrests DESC, driver_age
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 10}},
	},
	{
		Name:        "Gender Distribution by Country",
		Description: "Stop counts per country and driver gender",
		SQL: `SELECT country_name, driver_gender, COUNT(*) AS stop_count
			FROM police_stops
			GROUP BY country_name, driver_gender
			ORDER BY country_name, driver_gender`,
	},
	{
		Name:        "Race & Gender Combination with Highest Search Rate",
		Description: "Race and gender pairs with the most searches",
		SQL: `SELECT driver_race, driver_gender, COUNT(*) AS search_count
			FROM police_stops
			WHERE search_conducted
			GROUP BY driver_race, driver_gender
			ORDER BY search_count DESC, driver_race, driver_gender
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 10}},
	},
	{
		Name:        "Most Common Violations Among Drivers <25",
		Description: "Violation counts for drivers younger than the age cutoff",
		SQL: `SELECT violation, COUNT(*) AS violation_count
			FROM police_stops
			WHERE driver_age < @max_age
			GROUP BY violation
			ORDER BY violation_count DESC, violation`,
		Params: []QueryParam{{Name: "max_age", Default: 25}},
	},
	{
		Name:        "Countries with Highest Drug-Related Stops",
		Description: "Drug-related stop counts per country",
		SQL: `SELECT country_name, COUNT(*) AS drug_stops
			FROM police_stops
			WHERE drugs_related_stop
			GROUP BY country_name
			ORDER BY drug_stops DESC, country_name`,
	},
	{
		Name:        "Yearly Breakdown of Stops and Arrests by Country",
		Description: "Stops and arrests per country per year",
		SQL: `SELECT country_name, EXTRACT(YEAR FROM stop_date)::int AS year,
				COUNT(*) AS total_stops, SUM(is_arrested::int) AS total_arrests
			FROM police_stops
			GROUP BY country_name, year
			ORDER BY year, total_arrests DESC, country_name`,
	},
	{
		Name:        "Driver Violation Trends Based on Age and Race",
		Description: "Most frequent age, race and violation combinations",
		SQL: `SELECT driver_age, driver_race, violation, COUNT(*) AS count
			FROM police_stops
			GROUP BY driver_age, driver_race, violation
			ORDER BY count DESC, driver_age, driver_race, violation
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 20}},
	},
	{
		Name:        "Time Period Analysis of Stops (Year, Month, Hour)",
		Description: "Stop counts per year, month and hour of day",
		SQL: `SELECT EXTRACT(YEAR FROM stop_date)::int AS year,
				EXTRACT(MONTH FROM stop_date)::int AS month,
				EXTRACT(HOUR FROM stop_time)::int AS hour,
				COUNT(*) AS stop_count
			FROM police_stops
			GROUP BY year, month, hour
			ORDER BY year, month, hour`,
	},
	{
		Name:        "Violations with High Search and Arrest Rates",
		Description: "Search and arrest percentages per violation",
		SQL: `SELECT violation,
				SUM(search_conducted::int) AS searches,
				SUM(is_arrested::int) AS arrests,
				COUNT(*) AS total,
				ROUND(100.0 * SUM(search_conducted::int) / COUNT(*), 2)::float8 AS search_rate,
				ROUND(100.0 * SUM(is_arrested::int) / COUNT(*), 2)::float8 AS arrest_rate
			FROM police_stops
			GROUP BY violation
			ORDER BY arrest_rate DESC, violation
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 10}},
	},
	{
		Name:        "Driver Demographics by Country",
		Description: "Average age and stop totals per country, gender and race",
		SQL: `SELECT country_name, driver_gender, driver_race,
				ROUND(AVG(driver_age), 2)::float8 AS avg_age, COUNT(*) AS total
			FROM police_stops
			GROUP BY country_name, driver_gender, driver_race
			ORDER BY total DESC, country_name, driver_gender, driver_race`,
	},
	{
		Name:        "Top 5 Violations with Highest Arrest Rates",
		Description: "Violations ranked by arrest percentage",
		SQL: `SELECT violation, SUM(is_arrested::int) AS arrests, COUNT(*) AS total,
				ROUND(100.0 * SUM(is_arrested::int) / COUNT(*), 2)::float8 AS arrest_rate
			FROM police_stops
			GROUP BY violation
			ORDER BY arrest_rate DESC, violation
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 5}},
	},
	{
		Name:        "Peak Hours for Traffic Stops",
		Description: "Hours of the day with the most stops",
		SQL: `SELECT EXTRACT(HOUR FROM stop_time)::int AS hour, COUNT(*) AS stop_count
			FROM police_stops
			WHERE stop_time IS NOT NULL
			GROUP BY hour
			ORDER BY stop_count DESC, hour
			LIMIT @limit`,
		Params: []QueryParam{{Name: "limit", Default: 5}},
	},
}

// NamedQueries returns the Insights menu in display order
func NamedQueries() []NamedQuery {
	out := make([]NamedQuery, len(namedQueries))
	copy(out, namedQueries)
	return out
}

// FindNamedQuery looks up a query by its display name
func FindNamedQuery(name string) (NamedQuery, error) {
	for _, q := range namedQueries {
		if q.Name == name {
			return q, nil
		}
	}
	return NamedQuery{}, NewNotFoundErrorWithID("named query", name)
}

// reportQuery feeds the Reports tab and its exports
const reportQuery = `
	SELECT country_name, violation, COUNT(*) AS violation_count,
		SUM(is_arrested::int) AS total_arrests,
		SUM(drugs_related_stop::int) AS drug_cases
	FROM police_stops
	GROUP BY country_name, violation
	ORDER BY violation_count DESC, country_name, violation
`

