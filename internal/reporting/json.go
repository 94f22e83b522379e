// internal/reporting/json.go
package reporting

import (
	"io"
	"time"

	json "github.com/json-iterator/go"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ExecutionSummary is the "execution_summary" block of the JSON report.
type ExecutionSummary struct {
	TotalTests           int       `json:"total_tests"`
	PassedTests          int       `json:"passed_tests"`
	FailedTests          int       `json:"failed_tests"`
	SkippedTests         int       `json:"skipped_tests"`
	AbandonedTests       int       `json:"abandoned_tests"`
	PassPercentage       float64   `json:"pass_percentage"`
	TotalExecutionTimeMs float64   `json:"total_execution_time_ms"`
	AverageExecutionMs   float64   `json:"average_execution_time_ms"`
	ReportGenerationTime time.Time `json:"report_generation_time"`
}

// Document is the JSON report layout.
type Document struct {
	TestResults        []TestRecord                           `json:"test_results"`
	PerformanceMetrics *orderedmap.OrderedMap[string, any]    `json:"performance_metrics"`
	Screenshots        *orderedmap.OrderedMap[string, int]    `json:"screenshots"`
	ExecutionSummary   ExecutionSummary                       `json:"execution_summary"`
	SystemInfo         *orderedmap.OrderedMap[string, string] `json:"system_info"`
}

// Document converts the report into its JSON layout.
func (r *Report) Document() Document {
	results := r.Results
	if results == nil {
		results = []TestRecord{}
	}
	perf, shots, info := r.Performance, r.Screenshots, r.SystemInfo
	if perf == nil {
		perf = orderedmap.New[string, any]()
	}
	if shots == nil {
		shots = orderedmap.New[string, int]()
	}
	if info == nil {
		info = orderedmap.New[string, string]()
	}
	return Document{
		TestResults:        results,
		PerformanceMetrics: perf,
		Screenshots:        shots,
		ExecutionSummary: ExecutionSummary{
			TotalTests:           r.Stats.Total,
			PassedTests:          r.Stats.Passed,
			FailedTests:          r.Stats.Failed,
			SkippedTests:         r.Stats.Skipped,
			AbandonedTests:       r.Stats.Abandoned,
			PassPercentage:       r.Stats.PassPercentage(),
			TotalExecutionTimeMs: r.Stats.TotalExecutionMs,
			AverageExecutionMs:   r.Stats.AverageExecutionMs(),
			ReportGenerationTime: r.GeneratedAt,
		},
		SystemInfo: info,
	}
}

type jsonReporter struct {
	w io.WriteCloser
}

func (j *jsonReporter) Write(r *Report) error {
	data, err := json.MarshalIndent(r.Document(), "", "  ")
	if err != nil {
		return err
	}
	_, err = j.w.Write(append(data, '\n'))
	return err
}

func (j *jsonReporter) Close() error {
	return j.w.Close()
}
