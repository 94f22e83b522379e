// internal/reporting/html.go
package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

type htmlReporter struct {
	w io.WriteCloser
}

type htmlData struct {
	*Report
	PassRate   float64
	AvgTime    float64
	SystemInfo []htmlPair
}

type htmlPair struct {
	Key, Value string
}

var htmlFuncs = template.FuncMap{
	"lower":    func(s Status) string { return strings.ToLower(string(s)) },
	"perf":     PerformanceClass,
	"ms":       func(v float64) string { return fmt.Sprintf("%.0fms", v) },
	"stamp":    func(v interface{ Format(string) string }) string { return v.Format("2006-01-02 15:04:05") },
	"headline": headline,
}

// headline turns "operating_system" into "Operating System".
func headline(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.EngineLabel}} Automation Report</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; box-shadow: 0 0 20px rgba(0,0,0,0.1); }
.header { text-align: center; margin-bottom: 30px; padding: 20px; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; border-radius: 10px; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 20px; margin-bottom: 30px; }
.summary-card { background: #f8f9fa; padding: 20px; border-radius: 8px; text-align: center; border-left: 4px solid #007bff; }
.summary-card.passed { border-left-color: #28a745; }
.summary-card.failed { border-left-color: #dc3545; }
.summary-card.performance { border-left-color: #ffc107; }
.test-item { background: white; margin: 10px 0; padding: 20px; border-radius: 8px; border: 1px solid #dee2e6; }
.test-item.passed { border-left: 4px solid #28a745; }
.test-item.failed { border-left: 4px solid #dc3545; }
.test-item.skipped { border-left: 4px solid #ffc107; }
.performance-good { color: #28a745; font-weight: bold; }
.performance-warning { color: #ffc107; font-weight: bold; }
.performance-critical { color: #dc3545; font-weight: bold; }
.screenshot { max-width: 300px; margin: 10px 0; border: 2px solid #dee2e6; border-radius: 5px; }
.system-info { background: #e9ecef; padding: 15px; border-radius: 8px; margin-top: 20px; }
.steps { background: #f8f9fa; padding: 15px; margin: 10px 0; border-radius: 5px; }
.error { background: #fff5f5; padding: 10px; border-radius: 5px; white-space: pre-wrap; font-family: monospace; }
.timestamp { color: #6c757d; font-size: 0.9em; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>{{.EngineLabel}} Automation Report</h1>
    <p>Run {{.RunID}} generated {{stamp .GeneratedAt}}</p>
  </div>
  <div class="summary">
    <div class="summary-card" id="total"><h3>Total Tests</h3><h2>{{.Stats.Total}}</h2></div>
    <div class="summary-card passed" id="passed"><h3>Passed</h3><h2>{{.Stats.Passed}}</h2></div>
    <div class="summary-card failed" id="failed"><h3>Failed</h3><h2>{{.Stats.Failed}}</h2></div>
    <div class="summary-card" id="skipped"><h3>Skipped</h3><h2>{{.Stats.Skipped}}</h2></div>
    <div class="summary-card performance" id="pass-rate"><h3>Pass Rate</h3><h2>{{printf "%.1f" .PassRate}}%</h2></div>
    <div class="summary-card performance" id="avg-time"><h3>Avg Time</h3><h2>{{ms .AvgTime}}</h2></div>
  </div>
  <div class="system-info">
    <h3>System Information</h3>
    {{- range .SystemInfo}}
    <p><strong>{{headline .Key}}:</strong> {{.Value}}</p>
    {{- end}}
  </div>
  <div class="test-results">
    <h3>Test Results</h3>
    {{- range .Results}}
    <div class="test-item {{lower .Status}}" data-test-id="{{.ID}}">
      <h4>{{.Name}} - {{.Status}}</h4>
      <p><strong>Description:</strong> {{if .Description}}{{.Description}}{{else}}N/A{{end}}</p>
      <p><strong>Duration:</strong> <span class="{{perf .DurationMs}}">{{ms .DurationMs}}</span></p>
      <p><strong>Performance Level:</strong> {{.PerformanceLevel}}</p>
      {{- if .ResultMessage}}
      <p><strong>Result:</strong> {{.ResultMessage}}</p>
      {{- end}}
      {{- if .SkipReason}}
      <p><strong>Skip Reason:</strong> {{.SkipReason}}</p>
      {{- end}}
      {{- if .ErrorDetails}}
      <div class="error">{{.ErrorDetails}}</div>
      {{- end}}
      {{- if .Steps}}
      <div class="steps"><h5>Test Steps:</h5><ul>
        {{- range .Steps}}
        <li>{{.Description}} <span class="{{perf .Millis}}">({{ms .Millis}})</span></li>
        {{- end}}
      </ul></div>
      {{- end}}
      {{- if .Metrics.WebMetrics}}
      <div class="steps"><h5>Web Performance:</h5><ul>
        {{- range .Metrics.WebMetrics}}
        <li>{{.Action}} {{.URL}} <span class="{{perf .LoadTimeMs}}">({{ms .LoadTimeMs}})</span></li>
        {{- end}}
      </ul></div>
      {{- end}}
      {{- if .Screenshots}}
      <div class="screenshots"><h5>Screenshots:</h5>
        {{- range .Screenshots}}
        <p><strong>{{.Type}}:</strong> <a href="{{.Path}}">{{.Path}}</a></p>
        <img class="screenshot" src="{{.Path}}" alt="{{.Type}} screenshot">
        {{- end}}
      </div>
      {{- end}}
      <p class="timestamp">Executed: {{stamp .StartTime}}</p>
    </div>
    {{- end}}
  </div>
</div>
</body>
</html>
`))

// RenderHTML renders the report as a standalone HTML page.
func (r *Report) RenderHTML() ([]byte, error) {
	data := htmlData{
		Report:   r,
		PassRate: r.Stats.PassPercentage(),
		AvgTime:  r.Stats.AverageExecutionMs(),
	}
	if r.SystemInfo != nil {
		for pair := r.SystemInfo.Oldest(); pair != nil; pair = pair.Next() {
			data.SystemInfo = append(data.SystemInfo, htmlPair{Key: pair.Key, Value: pair.Value})
		}
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func (h *htmlReporter) Write(r *Report) error {
	data, err := r.RenderHTML()
	if err != nil {
		return err
	}
	_, err = h.w.Write(data)
	return err
}

func (h *htmlReporter) Close() error {
	return h.w.Close()
}
