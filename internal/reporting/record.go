// internal/reporting/record.go
package reporting

import (
	"time"
)

// Status is the lifecycle state of a test record.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusPassed  Status = "PASSED"
	StatusFailed  Status = "FAILED"
	StatusSkipped Status = "SKIPPED"
)

// StepStatus is the state of a single step.
type StepStatus string

const (
	StepRunning   StepStatus = "RUNNING"
	StepCompleted StepStatus = "COMPLETED"
)

// Screenshot reference types as they appear in reports.
const (
	ShotSuccess = "SUCCESS"
	ShotFailure = "FAILURE"
	ShotStep    = "STEP"
)

// PerformanceLevel buckets a duration for humans.
type PerformanceLevel string

const (
	LevelExcellent  PerformanceLevel = "Excellent"
	LevelGood       PerformanceLevel = "Good"
	LevelAcceptable PerformanceLevel = "Acceptable"
	LevelPoor       PerformanceLevel = "Poor"
)

// LevelFor maps a duration in milliseconds to a performance level.
func LevelFor(ms float64) PerformanceLevel {
	switch {
	case ms < 1000:
		return LevelExcellent
	case ms < 3000:
		return LevelGood
	case ms < 5000:
		return LevelAcceptable
	default:
		return LevelPoor
	}
}

// PerformanceClass is the CSS class the HTML report uses for a duration.
func PerformanceClass(ms float64) string {
	switch {
	case ms > 5000:
		return "performance-critical"
	case ms > 3000:
		return "performance-warning"
	default:
		return "performance-good"
	}
}

// Step is one logged step of a test.
type Step struct {
	ID               string           `json:"step_id"`
	Description      string           `json:"description"`
	Timestamp        time.Time        `json:"timestamp"`
	Status           StepStatus       `json:"status"`
	DurationMs       *float64         `json:"duration_ms,omitempty"`
	PerformanceLevel PerformanceLevel `json:"performance_level,omitempty"`
	CompletedAt      *time.Time       `json:"completion_time,omitempty"`
}

// Millis is the step duration, or 0 while the step is running.
func (s Step) Millis() float64 {
	if s.DurationMs == nil {
		return 0
	}
	return *s.DurationMs
}

// ScreenshotRef points at a capture attached to a test.
type ScreenshotRef struct {
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// LogEntry is an info or warning message attached to a test.
type LogEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// WebMetric is a timed browser action, usually a navigation.
type WebMetric struct {
	Action           string           `json:"action"`
	URL              string           `json:"url"`
	LoadTimeMs       float64          `json:"load_time_ms"`
	PerformanceLevel PerformanceLevel `json:"performance_level"`
	Timestamp        time.Time        `json:"timestamp"`
}

// TestMetrics groups per-test performance data.
type TestMetrics struct {
	WebMetrics []WebMetric `json:"web_metrics,omitempty"`
}

// PerformanceSummary is computed when a test is finalized.
type PerformanceSummary struct {
	TotalExecutionTimeMs float64          `json:"total_execution_time_ms"`
	PerformanceLevel     PerformanceLevel `json:"performance_level"`
	StepsCount           int              `json:"steps_count"`
	ScreenshotsCount     int              `json:"screenshots_count"`
}

// TestRecord is everything the reports know about one test execution.
type TestRecord struct {
	ID                 string              `json:"test_id"`
	Name               string              `json:"test_name"`
	Description        string              `json:"description"`
	ExecutionCount     int                 `json:"execution_count"`
	StartTime          time.Time           `json:"start_time"`
	EndTime            *time.Time          `json:"end_time,omitempty"`
	Status             Status              `json:"status"`
	Steps              []Step              `json:"steps"`
	Metrics            TestMetrics         `json:"performance_metrics"`
	Screenshots        []ScreenshotRef     `json:"screenshots"`
	DurationMs         float64             `json:"duration_ms"`
	PerformanceLevel   PerformanceLevel    `json:"performance_level,omitempty"`
	PerformanceSummary *PerformanceSummary `json:"performance_summary,omitempty"`
	ResultMessage      string              `json:"result_message,omitempty"`
	ErrorDetails       string              `json:"error_details,omitempty"`
	SkipReason         string              `json:"skip_reason,omitempty"`
	InfoLogs           []LogEntry          `json:"info_logs,omitempty"`
	WarningLogs        []LogEntry          `json:"warning_logs,omitempty"`
	Abandoned          bool                `json:"abandoned,omitempty"`
}

// Finalized reports whether the record reached a terminal status.
func (r TestRecord) Finalized() bool { return r.Status != StatusRunning }

func (r TestRecord) clone() TestRecord {
	c := r
	c.Steps = append(make([]Step, 0, len(r.Steps)), r.Steps...)
	c.Screenshots = append(make([]ScreenshotRef, 0, len(r.Screenshots)), r.Screenshots...)
	if r.Metrics.WebMetrics != nil {
		c.Metrics.WebMetrics = append([]WebMetric(nil), r.Metrics.WebMetrics...)
	}
	if r.InfoLogs != nil {
		c.InfoLogs = append([]LogEntry(nil), r.InfoLogs...)
	}
	if r.WarningLogs != nil {
		c.WarningLogs = append([]LogEntry(nil), r.WarningLogs...)
	}
	if r.EndTime != nil {
		end := *r.EndTime
		c.EndTime = &end
	}
	if r.PerformanceSummary != nil {
		ps := *r.PerformanceSummary
		c.PerformanceSummary = &ps
	}
	for i := range c.Steps {
		if at := c.Steps[i].CompletedAt; at != nil {
			v := *at
			c.Steps[i].CompletedAt = &v
		}
	}
	return c
}

// Statistics are the run counters. They only grow.
type Statistics struct {
	Total            int     `json:"total_tests"`
	Passed           int     `json:"passed_tests"`
	Failed           int     `json:"failed_tests"`
	Skipped          int     `json:"skipped_tests"`
	Abandoned        int     `json:"abandoned_tests"`
	TotalExecutionMs float64 `json:"total_execution_time_ms"`
}

// PassPercentage is passed/total*100, zero for an empty run.
func (s Statistics) PassPercentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}

// AverageExecutionMs is the mean finalized duration over all started tests.
func (s Statistics) AverageExecutionMs() float64 {
	if s.Total == 0 {
		return 0
	}
	return s.TotalExecutionMs / float64(s.Total)
}

func millis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d.Microseconds()) / 1000
}
