package api

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"police-dashboard/logging"
)

var funcMap = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"cell": formatCell,
	"yesno": func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	},
}

var pageTmpls = map[string]*template.Template{
	"insert":   template.Must(template.New("insert").Funcs(funcMap).Parse(navHTML + insertHTML)),
	"insights": template.Must(template.New("insights").Funcs(funcMap).Parse(navHTML + insightsHTML)),
	"reports":  template.Must(template.New("reports").Funcs(funcMap).Parse(navHTML + reportsHTML)),
}

func renderPage(w http.ResponseWriter, status int, name string, data map[string]any) {
	tmpl, ok := pageTmpls[name]
	if !ok {
		http.Error(w, "unknown page: "+name, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.Error().Err(err).Str("page", name).Msg("Template error")
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// formatCell renders one result-set value as table text
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case float64:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprint(val)
	}
}

const navHTML = `{{define "nav"}}
<nav class="bg-gray-900 border-b border-gray-700 px-6 py-4">
    <div class="flex items-center justify-between max-w-7xl mx-auto">
        <div class="flex items-center space-x-2">
            <span class="text-xl font-bold text-white">🚓 Police Check Post</span>
            <span class="text-xs bg-gray-700 text-gray-300 px-2 py-1 rounded">Dashboard</span>
        </div>
        <div class="flex space-x-4">
            <a href="/" class="px-3 py-2 rounded hover:bg-gray-800 {{if eq .Page "insert"}}bg-gray-800 text-white{{else}}text-gray-400{{end}}">📝 Add New Police Log</a>
            <a href="/insights" class="px-3 py-2 rounded hover:bg-gray-800 {{if eq .Page "insights"}}bg-gray-800 text-white{{else}}text-gray-400{{end}}">📊 Advanced Insights</a>
            <a href="/reports" class="px-3 py-2 rounded hover:bg-gray-800 {{if eq .Page "reports"}}bg-gray-800 text-white{{else}}text-gray-400{{end}}">📈 Reports</a>
        </div>
    </div>
</nav>
{{end}}`

const headHTML = `<!DOCTYPE html>
<html lang="en" class="dark">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Police Check Post Dashboard</title>
    <script src="https://cdn.tailwindcss.com"></script>
    <style>body { background-color: #0f172a; color: #e2e8f0; } input, select { color: #0f172a; }</style>
</head>
<body class="min-h-screen">
{{template "nav" .}}
<main class="max-w-7xl mx-auto px-6 py-8">`

const footHTML = `</main>
</body>
</html>`

const insertHTML = headHTML + `
<h1 class="text-2xl font-bold mb-6">Add New Police Log</h1>
{{if .Error}}
<div class="bg-red-900 text-red-200 rounded p-4 mb-6">❌ Error inserting log: {{.Error}}</div>
{{end}}
{{with .Inserted}}
<div class="bg-green-900 text-green-200 rounded p-4 mb-6">
    <p class="font-bold mb-2">✅ New log submitted successfully!</p>
    <table class="text-sm">
        <tr><td class="pr-4">ID</td><td>{{.ID}}</td></tr>
        <tr><td class="pr-4">Stop Date</td><td>{{date .StopDate}}</td></tr>
        <tr><td class="pr-4">Stop Time</td><td>{{deref .StopTime}}</td></tr>
        <tr><td class="pr-4">Country</td><td>{{.CountryName}}</td></tr>
        <tr><td class="pr-4">Driver</td><td>{{.DriverGender}}, {{.DriverAge}}, {{.DriverRace}}</td></tr>
        <tr><td class="pr-4">Violation</td><td>{{.Violation}}</td></tr>
        <tr><td class="pr-4">Search</td><td>{{yesno .SearchConducted}} {{.SearchType}}</td></tr>
        <tr><td class="pr-4">Arrested</td><td>{{yesno .IsArrested}}</td></tr>
        <tr><td class="pr-4">Drug Related</td><td>{{yesno .DrugsRelatedStop}}</td></tr>
        <tr><td class="pr-4">Duration</td><td>{{.StopDuration}}</td></tr>
        <tr><td class="pr-4">Vehicle</td><td>{{.VehicleNumber}}</td></tr>
    </table>
</div>
{{end}}
<form method="post" action="/stops" class="grid grid-cols-1 md:grid-cols-2 gap-4 bg-gray-900 border border-gray-700 rounded-lg p-6">
    <label>Stop Date<input type="date" name="stop_date" value="{{.Input.StopDate}}" class="w-full rounded p-2" required></label>
    <label>Stop Time<input type="time" name="stop_time" value="{{.Input.StopTime}}" class="w-full rounded p-2" required></label>
    <label>Country Name
        <select name="country_name" class="w-full rounded p-2">
            <option value=""></option>
            {{range .Options.Countries}}<option value="{{.}}" {{if eq . $.Input.CountryName}}selected{{end}}>{{.}}</option>{{end}}
        </select>
    </label>
    <label>Driver Gender
        <select name="driver_gender" class="w-full rounded p-2">
            {{range .Genders}}<option value="{{.}}" {{if eq . $.Input.DriverGender}}selected{{end}}>{{.}}</option>{{end}}
        </select>
    </label>
    <label>Driver Age<input type="number" name="driver_age" min="0" max="120" step="1" value="{{.Input.DriverAge}}" class="w-full rounded p-2" required></label>
    <label>Driver Race
        <select name="driver_race" class="w-full rounded p-2">
            <option value=""></option>
            {{range .Options.Races}}<option value="{{.}}" {{if eq . $.Input.DriverRace}}selected{{end}}>{{.}}</option>{{end}}
        </select>
    </label>
    <label>Violation
        <select name="violation" class="w-full rounded p-2">
            <option value=""></option>
            {{range .Options.Violations}}<option value="{{.}}" {{if eq . $.Input.Violation}}selected{{end}}>{{.}}</option>{{end}}
        </select>
    </label>
    <label>Was a Search Conducted?
        <select name="search_conducted" class="w-full rounded p-2"><option>0</option><option>1</option></select>
    </label>
    <label>Search Type<input type="text" name="search_type" value="{{.Input.SearchType}}" class="w-full rounded p-2"></label>
    <label>Was Driver Arrested?
        <select name="is_arrested" class="w-full rounded p-2"><option>0</option><option>1</option></select>
    </label>
    <label>Was it Drug Related?
        <select name="drugs_related_stop" class="w-full rounded p-2"><option>0</option><option>1</option></select>
    </label>
    <label>Stop Duration
        <select name="stop_duration" class="w-full rounded p-2">
            {{range .Durations}}<option value="{{.}}" {{if eq . $.Input.StopDuration}}selected{{end}}>{{.}}</option>{{end}}
        </select>
    </label>
    <label>Vehicle Number<input type="text" name="vehicle_number" value="{{.Input.VehicleNumber}}" class="w-full rounded p-2"></label>
    <div class="md:col-span-2"><button type="submit" class="bg-blue-700 hover:bg-blue-600 text-white px-4 py-2 rounded">Submit Log</button></div>
</form>
<p id="live" class="text-sm text-gray-400 mt-4"></p>
<script>
    if (window.EventSource) {
        const es = new EventSource("/api/events");
        es.onmessage = (e) => {
            const msg = JSON.parse(e.data);
            if (msg.event === "stop_created") {
                document.getElementById("live").textContent =
                    "New stop logged: " + msg.payload.country_name + " / " + msg.payload.violation;
            }
        };
    }
</script>
` + footHTML

const insightsHTML = headHTML + `
<h1 class="text-2xl font-bold mb-6">Advanced Insights</h1>
<form method="get" action="/insights" class="flex space-x-4 mb-6">
    <select name="name" class="rounded p-2 flex-1">
        {{range .Queries}}<option value="{{.Name}}" title="{{.Description}}" {{if eq .Name $.Selected}}selected{{end}}>{{.Name}}</option>{{end}}
    </select>
    <button type="submit" class="bg-blue-700 hover:bg-blue-600 text-white px-4 py-2 rounded">Run Query</button>
</form>
{{if .Error}}
<div class="bg-red-900 text-red-200 rounded p-4 mb-6">❌ Error executing query: {{.Error}}</div>
{{end}}
{{with .Result}}
<div class="bg-green-900 text-green-200 rounded p-4 mb-4">✅ Query executed: {{$.Selected}}</div>
<div class="bg-gray-900 border border-gray-700 rounded-lg overflow-x-auto">
    <table class="w-full text-sm text-left">
        <thead class="bg-gray-800 text-gray-400 uppercase text-xs">
            <tr>{{range .Columns}}<th class="px-4 py-3">{{.}}</th>{{end}}</tr>
        </thead>
        <tbody>
            {{range .Rows}}<tr class="border-b border-gray-700">{{range .}}<td class="px-4 py-2">{{cell .}}</td>{{end}}</tr>
            {{else}}<tr><td class="px-4 py-2 text-gray-500">No rows</td></tr>{{end}}
        </tbody>
    </table>
</div>
{{end}}
` + footHTML

const reportsHTML = headHTML + `
<div class="flex justify-between items-center mb-6">
    <h1 class="text-2xl font-bold">Automated Reports</h1>
    <div class="space-x-2">
        <a href="/api/reports/export.csv" class="bg-blue-700 hover:bg-blue-600 text-white px-4 py-2 rounded">⬇️ Download Report (CSV)</a>
        <a href="/api/reports/export.xlsx" class="bg-gray-700 hover:bg-gray-600 text-white px-4 py-2 rounded">⬇️ XLSX</a>
    </div>
</div>
{{if .Error}}
<div class="bg-red-900 text-red-200 rounded p-4 mb-6">❌ Error generating report: {{.Error}}</div>
{{else}}
<h2 class="text-lg font-bold mb-4">Summary Report by Country &amp; Violation</h2>
<div class="bg-gray-900 border border-gray-700 rounded-lg overflow-x-auto mb-8">
    <table class="w-full text-sm text-left">
        <thead class="bg-gray-800 text-gray-400 uppercase text-xs">
            <tr>{{range .Columns}}<th class="px-4 py-3">{{.}}</th>{{end}}</tr>
        </thead>
        <tbody>
            {{range .Rows}}<tr class="border-b border-gray-700"><td class="px-4 py-2">{{.CountryName}}</td><td class="px-4 py-2">{{.Violation}}</td><td class="px-4 py-2">{{.ViolationCount}}</td><td class="px-4 py-2">{{.TotalArrests}}</td><td class="px-4 py-2">{{.DrugCases}}</td></tr>
            {{else}}<tr><td class="px-4 py-2 text-gray-500">No stops recorded yet</td></tr>{{end}}
        </tbody>
    </table>
</div>
<h2 class="text-lg font-bold mb-4">Visual Insights</h2>
<div class="grid grid-cols-1 md:grid-cols-2 gap-6">
    <div class="bg-gray-900 border border-gray-700 rounded-lg p-4"><canvas id="countryShare"></canvas></div>
    <div class="bg-gray-900 border border-gray-700 rounded-lg p-4"><canvas id="topViolations"></canvas></div>
    <div class="bg-gray-900 border border-gray-700 rounded-lg p-4"><canvas id="arrestsVsViolations"></canvas></div>
    <div class="bg-gray-900 border border-gray-700 rounded-lg p-4"><canvas id="drugsByCountry"></canvas></div>
</div>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<script>
    const charts = {{.Charts}};
    const labels = (s) => s.map((x) => x.label);
    const values = (s) => s.map((x) => x.value);
    new Chart(document.getElementById("countryShare"), {
        type: "pie",
        data: { labels: labels(charts.country_share), datasets: [{ data: values(charts.country_share) }] },
        options: { plugins: { title: { display: true, text: "Violations Share by Country" } } }
    });
    new Chart(document.getElementById("topViolations"), {
        type: "bar",
        data: { labels: labels(charts.top_violations), datasets: [{ label: "violation_count", data: values(charts.top_violations) }] },
        options: { indexAxis: "y", plugins: { title: { display: true, text: "Top 10 Violations" } } }
    });
    const maxArrests = Math.max(1, ...charts.arrests_vs_violations.map((b) => b.size));
    new Chart(document.getElementById("arrestsVsViolations"), {
        type: "bubble",
        data: { datasets: charts.arrests_vs_violations.map((b) => ({
            label: b.violation,
            data: [{ x: b.violation_count, y: b.total_arrests, r: 4 + 26 * b.size / maxArrests }]
        })) },
        options: { plugins: { title: { display: true, text: "Arrests vs Violations" } } }
    });
    new Chart(document.getElementById("drugsByCountry"), {
        type: "line",
        data: { labels: labels(charts.drugs_by_country), datasets: [{ label: "drug_cases", data: values(charts.drugs_by_country) }] },
        options: { plugins: { title: { display: true, text: "Drug Related Stops by Country" } } }
    });
</script>
{{end}}
` + footHTML
