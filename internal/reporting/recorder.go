// internal/reporting/recorder.go
package reporting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

var (
	// ErrNoActiveTest is returned when a test-scoped operation has nothing to act on.
	ErrNoActiveTest = errors.New("no active test")
	// ErrNoRunningStep is returned by CompleteStep when no step is open.
	ErrNoRunningStep = errors.New("no running step")
	// ErrTestFinalized is returned when a finished test is finalized again.
	ErrTestFinalized = errors.New("test already finalized")
)

const fileStampLayout = "2006-01-02_15-04-05"

// Options configure a Recorder.
type Options struct {
	// Dir is the reports root.
	Dir string
	// EngineLabel prefixes artifact file names, e.g. "Playwright".
	EngineLabel string
	Environment string
	Engine      string
	BrowserType string
	Headless    bool
	BaseURL     string
	ThresholdMs int64
}

// Recorder accumulates test records for one run and renders them into
// reports. It is safe for concurrent use; every Test handle it hands out
// mutates state under the recorder's lock.
type Recorder struct {
	logger *zap.Logger
	opts   Options
	runID  string
	now    func() time.Time

	mu       sync.Mutex
	results  []TestRecord
	current  *Test
	counts   map[string]int
	stats    Statistics
	renderMu sync.Mutex
}

// NewRecorder creates an empty recorder. Nothing is written until a report is requested.
func NewRecorder(opts Options, logger *zap.Logger) *Recorder {
	if opts.Dir == "" {
		opts.Dir = "reports"
	}
	if opts.EngineLabel == "" {
		opts.EngineLabel = "E2E"
	}
	if opts.ThresholdMs <= 0 {
		opts.ThresholdMs = 5000
	}
	return &Recorder{
		logger: logger.Named("reporting"),
		opts:   opts,
		runID:  uuid.NewString(),
		now:    time.Now,
		counts: make(map[string]int),
	}
}

// RunID identifies this run in every artifact.
func (r *Recorder) RunID() string { return r.runID }

// Dir is the reports root.
func (r *Recorder) Dir() string { return r.opts.Dir }

// Open starts a test record without touching the current-test slot.
// Concurrent workers each hold their own handle.
func (r *Recorder) Open(name, description string) *Test {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openLocked(name, description)
}

// StartTest starts a test and makes it current. A current test that was
// never finalized is closed as FAILED and counted as abandoned.
func (r *Recorder) StartTest(name, description string) *Test {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev := r.current; prev != nil && !prev.done {
		prev.record.Abandoned = true
		prev.record.ErrorDetails = "abandoned: superseded by " + name
		r.finalizeLocked(prev, StatusFailed, "Test did not report a result")
		r.stats.Abandoned++
		r.logger.Warn("Unfinished test abandoned.",
			zap.String("test", prev.record.Name),
			zap.String("superseded_by", name),
		)
	}
	t := r.openLocked(name, description)
	r.current = t
	return t
}

func (r *Recorder) openLocked(name, description string) *Test {
	now := r.now()
	r.counts[name]++
	count := r.counts[name]

	id := fmt.Sprintf("%s_%d", name, now.Unix())
	if count > 1 {
		id += "_" + strconv.Itoa(count)
	}

	t := &Test{
		rec:        r,
		started:    now,
		stepStarts: make(map[string]time.Time),
		record: TestRecord{
			ID:             id,
			Name:           name,
			Description:    description,
			ExecutionCount: count,
			StartTime:      now,
			Status:         StatusRunning,
			Steps:          []Step{},
			Screenshots:    []ScreenshotRef{},
		},
	}
	r.stats.Total++

	r.logger.Info("Test started.", zap.String("test", name), zap.Int("execution", count))
	t.infoLocked("Test Description: " + description)
	t.infoLocked(fmt.Sprintf("Execution Count: %d", count))
	return t
}

// Current returns the test in the current-test slot.
func (r *Recorder) Current() (*Test, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.current != nil
}

func (r *Recorder) currentTest() (*Test, error) {
	r.mu.Lock()
	t := r.current
	r.mu.Unlock()
	if t == nil {
		r.logger.Warn("No active test.")
		return nil, ErrNoActiveTest
	}
	return t, nil
}

// LogStep logs a step on the current test.
func (r *Recorder) LogStep(description string) error {
	t, err := r.currentTest()
	if err != nil {
		return err
	}
	return t.LogStep(description)
}

// CompleteStep completes the latest open step of the current test.
func (r *Recorder) CompleteStep(description string) error {
	t, err := r.currentTest()
	if err != nil {
		return err
	}
	return t.CompleteStep(description)
}

// LogPass passes the current test.
func (r *Recorder) LogPass(message, screenshotPath string) error {
	t, err := r.currentTest()
	if err != nil {
		return err
	}
	return t.Pass(message, screenshotPath)
}

// LogFail fails the current test.
func (r *Recorder) LogFail(message, screenshotPath, errorDetails string) error {
	t, err := r.currentTest()
	if err != nil {
		return err
	}
	return t.Fail(message, screenshotPath, errorDetails)
}

// LogSkip skips the current test.
func (r *Recorder) LogSkip(message, reason string) error {
	t, err := r.currentTest()
	if err != nil {
		return err
	}
	return t.Skip(message, reason)
}

func (r *Recorder) finalizeLocked(t *Test, status Status, message string) {
	end := r.now()
	d := millis(end.Sub(t.started))

	rec := &t.record
	rec.Status = status
	rec.ResultMessage = message
	rec.EndTime = &end
	rec.DurationMs = d
	rec.PerformanceLevel = LevelFor(d)
	rec.PerformanceSummary = &PerformanceSummary{
		TotalExecutionTimeMs: d,
		PerformanceLevel:     rec.PerformanceLevel,
		StepsCount:           len(rec.Steps),
		ScreenshotsCount:     len(rec.Screenshots),
	}
	t.done = true

	switch status {
	case StatusPassed:
		r.stats.Passed++
	case StatusFailed:
		r.stats.Failed++
	case StatusSkipped:
		r.stats.Skipped++
	}
	r.stats.TotalExecutionMs += d
	r.results = append(r.results, rec.clone())
	if r.current == t {
		r.current = nil
	}
}

// Statistics returns the run counters.
func (r *Recorder) Statistics() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Results returns copies of the finalized records in completion order.
func (r *Recorder) Results() []TestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TestRecord, len(r.results))
	for i, rec := range r.results {
		out[i] = rec.clone()
	}
	return out
}

// Snapshot freezes the accumulated state into a renderable report.
func (r *Recorder) Snapshot() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	rep := &Report{
		RunID:       r.runID,
		EngineLabel: r.opts.EngineLabel,
		GeneratedAt: now,
		Stats:       r.stats,
		Results:     make([]TestRecord, len(r.results)),
		SystemInfo:  r.systemInfo(now),
		Performance: orderedmap.New[string, any](),
		Screenshots: orderedmap.New[string, int](),
	}
	for i, rec := range r.results {
		rep.Results[i] = rec.clone()
	}

	var (
		slowest     TestRecord
		overLimit   int
		webMetrics  int
		stepTotalMs float64
		stepCount   int
		shots       = map[string]int{}
	)
	for _, rec := range rep.Results {
		if rec.DurationMs > slowest.DurationMs {
			slowest = rec
		}
		if rec.DurationMs > float64(r.opts.ThresholdMs) {
			overLimit++
		}
		webMetrics += len(rec.Metrics.WebMetrics)
		for _, s := range rec.Steps {
			if s.Status == StepCompleted {
				stepTotalMs += s.Millis()
				stepCount++
			}
		}
		for _, s := range rec.Screenshots {
			shots[s.Type]++
		}
	}
	rep.Performance.Set("threshold_ms", r.opts.ThresholdMs)
	rep.Performance.Set("tests_over_threshold", overLimit)
	rep.Performance.Set("slowest_test", slowest.Name)
	rep.Performance.Set("slowest_test_ms", slowest.DurationMs)
	avgStep := 0.0
	if stepCount > 0 {
		avgStep = stepTotalMs / float64(stepCount)
	}
	rep.Performance.Set("average_step_ms", avgStep)
	rep.Performance.Set("web_metrics_recorded", webMetrics)

	total := 0
	for _, kind := range []string{ShotSuccess, ShotFailure, ShotStep} {
		rep.Screenshots.Set(strings.ToLower(kind), shots[kind])
		total += shots[kind]
	}
	rep.Screenshots.Set("total", total)
	return rep
}

func (r *Recorder) systemInfo(now time.Time) *orderedmap.OrderedMap[string, string] {
	host, _ := os.Hostname()
	info := orderedmap.New[string, string]()
	info.Set("run_id", r.runID)
	info.Set("operating_system", runtime.GOOS)
	info.Set("architecture", runtime.GOARCH)
	info.Set("go_version", runtime.Version())
	info.Set("cpus", strconv.Itoa(runtime.NumCPU()))
	info.Set("hostname", host)
	info.Set("test_environment", r.opts.Environment)
	info.Set("browser_engine", r.opts.Engine)
	info.Set("browser", r.opts.BrowserType)
	info.Set("headless_mode", strconv.FormatBool(r.opts.Headless))
	info.Set("base_url", r.opts.BaseURL)
	info.Set("performance_threshold", fmt.Sprintf("%dms", r.opts.ThresholdMs))
	info.Set("report_generation_time", now.Format("2006-01-02 15:04:05"))
	info.Set("framework", r.opts.EngineLabel+" UI automation")
	return info
}

// GenerateHTMLReport writes <Engine>_Enhanced_Report_<timestamp>.html into the reports root.
func (r *Recorder) GenerateHTMLReport() (string, error) {
	return r.save(FormatHTML, "Enhanced_Report", ".html")
}

// SaveJSONReport writes <Engine>_Report_<timestamp>.json into the reports root.
func (r *Recorder) SaveJSONReport() (string, error) {
	return r.save(FormatJSON, "Report", ".json")
}

// SaveJUnitReport writes <Engine>_JUnit_<timestamp>.xml into the reports root.
func (r *Recorder) SaveJUnitReport() (string, error) {
	return r.save(FormatJUnit, "JUnit", ".xml")
}

func (r *Recorder) save(format, kind, ext string) (string, error) {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	if err := os.MkdirAll(r.opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir %s: %w", r.opts.Dir, err)
	}
	label := strings.ReplaceAll(r.opts.EngineLabel, " ", "_")
	base := fmt.Sprintf("%s_%s_%s", label, kind, r.now().Format(fileStampLayout))
	path := uniquePath(filepath.Join(r.opts.Dir, base), ext)

	rep, err := New(format, path)
	if err != nil {
		return "", err
	}
	if err := rep.Write(r.Snapshot()); err != nil {
		rep.Close()
		return "", fmt.Errorf("failed to write %s report: %w", format, err)
	}
	if err := rep.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s report: %w", format, err)
	}

	r.logger.Info("Report written.", zap.String("format", format), zap.String("path", path))
	return path, nil
}

// uniquePath returns base+ext, or base_N+ext when earlier files exist.
func uniquePath(base, ext string) string {
	path := base + ext
	for n := 2; ; n++ {
		if _, err := os.Stat(path); err != nil {
			return path
		}
		path = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
}
