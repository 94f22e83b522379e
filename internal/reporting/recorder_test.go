// internal/reporting/recorder_test.go
package reporting

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock advances by step on every reading.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func newRecorder(t *testing.T, dir string) (*Recorder, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), step: 50 * time.Millisecond}
	r := NewRecorder(Options{
		Dir:         dir,
		EngineLabel: "Playwright",
		Environment: "qa",
		Engine:      "playwright",
		BrowserType: "chromium",
		Headless:    true,
		BaseURL:     "https://www.saucedemo.com",
	}, zaptest.NewLogger(t))
	r.now = clock.Now
	return r, clock
}

func TestLevelsAndClasses(t *testing.T) {
	tests := []struct {
		ms    float64
		level PerformanceLevel
		class string
	}{
		{0, LevelExcellent, "performance-good"},
		{999, LevelExcellent, "performance-good"},
		{1000, LevelGood, "performance-good"},
		{3000, LevelAcceptable, "performance-good"},
		{3001, LevelAcceptable, "performance-warning"},
		{5000, LevelPoor, "performance-warning"},
		{5001, LevelPoor, "performance-critical"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.ms), func(t *testing.T) {
			assert.Equal(t, tt.level, LevelFor(tt.ms))
			assert.Equal(t, tt.class, PerformanceClass(tt.ms))
		})
	}
}

func TestTestLifecycle(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())

	tc := r.StartTest("test_valid_login", "valid credentials reach the inventory")
	assert.Equal(t, StatusRunning, tc.Status())
	assert.Equal(t, "test_valid_login_1714557600", tc.ID())
	cur, ok := r.Current()
	require.True(t, ok)
	assert.Same(t, tc, cur)

	require.NoError(t, tc.LogStep("Navigate to login page"))
	require.NoError(t, tc.CompleteStep("Navigate to login page"))
	require.NoError(t, tc.LogStep("Submit credentials"))
	require.NoError(t, tc.RecordMetric("login", 1500*time.Millisecond, "https://www.saucedemo.com/inventory.html"))
	require.NoError(t, tc.Warn("slow login"))
	require.NoError(t, tc.Pass("Login succeeded", "screenshots/success/SUCCESS_x.png"))

	_, ok = r.Current()
	assert.False(t, ok, "finalizing clears the slot")

	results := r.Results()
	require.Len(t, results, 1)
	rec := results[0]
	assert.Equal(t, StatusPassed, rec.Status)
	assert.Equal(t, "Login succeeded", rec.ResultMessage)
	assert.Equal(t, 1, rec.ExecutionCount)
	require.NotNil(t, rec.EndTime)
	assert.Greater(t, rec.DurationMs, 0.0)
	assert.Equal(t, LevelExcellent, rec.PerformanceLevel)
	require.NotNil(t, rec.PerformanceSummary)
	assert.Equal(t, 2, rec.PerformanceSummary.StepsCount)
	assert.Equal(t, 1, rec.PerformanceSummary.ScreenshotsCount)

	require.Len(t, rec.Steps, 2)
	assert.Equal(t, "step_0", rec.Steps[0].ID)
	assert.Equal(t, StepCompleted, rec.Steps[0].Status)
	require.NotNil(t, rec.Steps[0].DurationMs)
	assert.Equal(t, 50.0, *rec.Steps[0].DurationMs)
	assert.Nil(t, rec.Steps[1].DurationMs)
	assert.Equal(t, StepRunning, rec.Steps[1].Status, "an open step stays RUNNING")

	assert.Equal(t, []ScreenshotRef{{Type: ShotSuccess, Path: "screenshots/success/SUCCESS_x.png", Timestamp: rec.Screenshots[0].Timestamp}}, rec.Screenshots)
	require.Len(t, rec.Metrics.WebMetrics, 1)
	assert.Equal(t, LevelGood, rec.Metrics.WebMetrics[0].PerformanceLevel)
	assert.Len(t, rec.WarningLogs, 1)
	assert.GreaterOrEqual(t, len(rec.InfoLogs), 2)
}

func TestCompleteStepIsLIFO(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	tc := r.Open("nested", "")

	require.NoError(t, tc.LogStep("outer"))
	require.NoError(t, tc.LogStep("inner"))
	require.NoError(t, tc.CompleteStep("inner"))

	steps := tc.Record().Steps
	assert.Equal(t, StepRunning, steps[0].Status)
	assert.Equal(t, StepCompleted, steps[1].Status)

	require.NoError(t, tc.CompleteStep("outer"))
	assert.ErrorIs(t, tc.CompleteStep("none left"), ErrNoRunningStep)
}

func TestFinalizedTestRejectsChanges(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	tc := r.Open("once", "")
	require.NoError(t, tc.Fail("boom", "", "assertion failed"))

	before := tc.Record()
	assert.ErrorIs(t, tc.Pass("again", ""), ErrTestFinalized)
	assert.ErrorIs(t, tc.Skip("again", ""), ErrTestFinalized)
	assert.ErrorIs(t, tc.Fail("again", "", ""), ErrTestFinalized)
	assert.ErrorIs(t, tc.LogStep("late"), ErrNoActiveTest)
	assert.ErrorIs(t, tc.Info("late"), ErrNoActiveTest)
	assert.ErrorIs(t, tc.AttachScreenshot(ShotStep, "x.png"), ErrNoActiveTest)

	if diff := cmp.Diff(before, tc.Record()); diff != "" {
		t.Errorf("finalized record changed (-before +after):\n%s", diff)
	}
	stats := r.Statistics()
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Passed)
}

func TestRecorderSlotOperations(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())

	assert.ErrorIs(t, r.LogStep("x"), ErrNoActiveTest)
	assert.ErrorIs(t, r.CompleteStep("x"), ErrNoActiveTest)
	assert.ErrorIs(t, r.LogPass("x", ""), ErrNoActiveTest)
	assert.ErrorIs(t, r.LogFail("x", "", ""), ErrNoActiveTest)
	assert.ErrorIs(t, r.LogSkip("x", ""), ErrNoActiveTest)

	r.StartTest("slot", "")
	require.NoError(t, r.LogStep("one"))
	require.NoError(t, r.CompleteStep("one"))
	require.NoError(t, r.LogSkip("not today", "feature flag off"))
	assert.ErrorIs(t, r.LogPass("x", ""), ErrNoActiveTest)

	rec := r.Results()[0]
	assert.Equal(t, StatusSkipped, rec.Status)
	assert.Equal(t, "feature flag off", rec.SkipReason)
}

func TestStartTestAbandonsUnfinished(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())

	first := r.StartTest("first", "")
	second := r.StartTest("second", "")

	assert.Equal(t, StatusFailed, first.Status())
	rec := first.Record()
	assert.True(t, rec.Abandoned)
	assert.Equal(t, "abandoned: superseded by second", rec.ErrorDetails)

	stats := r.Statistics()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Abandoned)

	cur, _ := r.Current()
	assert.Same(t, second, cur)
	assert.ErrorIs(t, first.Pass("late", ""), ErrTestFinalized)
}

func TestStatisticsPassRate(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Open(fmt.Sprintf("p%d", i), "").Pass("ok", ""))
	}
	require.NoError(t, r.Open("f", "").Fail("no", "", ""))

	stats := r.Statistics()
	assert.Equal(t, Statistics{Total: 4, Passed: 3, Failed: 1, TotalExecutionMs: stats.TotalExecutionMs}, stats)
	assert.InDelta(t, 75.0, stats.PassPercentage(), 1e-9)
	assert.InDelta(t, stats.TotalExecutionMs/4, stats.AverageExecutionMs(), 1e-9)

	assert.Zero(t, Statistics{}.PassPercentage())
	assert.Zero(t, Statistics{}.AverageExecutionMs())
}

func TestExecutionCountsAndIDs(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	a := r.Open("repeat", "")
	b := r.Open("repeat", "")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, b.Record().ExecutionCount)
}

func TestResultsAreCopies(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())
	tc := r.Open("copy", "")
	require.NoError(t, tc.LogStep("s"))
	require.NoError(t, tc.Pass("ok", ""))

	got := r.Results()
	got[0].Steps[0].Description = "mutated"
	got[0].Name = "mutated"
	assert.Equal(t, "s", r.Results()[0].Steps[0].Description)
	assert.Equal(t, "copy", r.Results()[0].Name)
}

func TestConcurrentTests(t *testing.T) {
	r, _ := newRecorder(t, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc := r.Open(fmt.Sprintf("worker_%d", i), "")
			assert.NoError(t, tc.LogStep("work"))
			assert.NoError(t, tc.CompleteStep("work"))
			if i%2 == 0 {
				assert.NoError(t, tc.Pass("ok", ""))
			} else {
				assert.NoError(t, tc.Fail("no", "", "odd"))
			}
		}(i)
	}
	wg.Wait()

	stats := r.Statistics()
	assert.Equal(t, 16, stats.Total)
	assert.Equal(t, 8, stats.Passed)
	assert.Equal(t, 8, stats.Failed)
	assert.Len(t, r.Results(), 16)
}
