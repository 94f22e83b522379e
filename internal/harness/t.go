// internal/harness/t.go
package harness

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/pages"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/reporting"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/screenshot"
)

// T is handed to a case body. It satisfies require.TestingT, so testify
// assertions can be pointed at it directly. FailNow and Skip stop the body
// with runtime.Goexit, the same way *testing.T does; call them only from the
// goroutine running the body.
type T struct {
	ctx      context.Context
	name     string
	page     browser.Page
	settings pages.Settings
	target   config.TargetConfig
	test     *reporting.Test
	shots    *screenshot.Capturer
	onStep   bool
	logger   *zap.Logger

	mu         sync.Mutex
	failed     bool
	skipped    bool
	skipReason string
	errs       []string
}

var _ require.TestingT = (*T)(nil)

// Context is the case context. It is canceled when the case times out.
func (t *T) Context() context.Context { return t.ctx }

// Name is the case name.
func (t *T) Name() string { return t.name }

// Page is the browser page this case owns.
func (t *T) Page() browser.Page { return t.page }

// Settings are the page object settings of the run.
func (t *T) Settings() pages.Settings { return t.settings }

// Target describes the shop under test, credentials included.
func (t *T) Target() config.TargetConfig { return t.target }

// Logger is scoped to the case.
func (t *T) Logger() *zap.Logger { return t.logger }

// Helper is a no-op; testify calls it when present.
func (t *T) Helper() {}

// Errorf records a failure and lets the body continue.
func (t *T) Errorf(format string, args ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	t.mu.Lock()
	t.failed = true
	t.errs = append(t.errs, msg)
	t.mu.Unlock()
	t.logger.Error("Assertion failed.", zap.String("detail", msg))
}

// Fail marks the case failed without stopping it.
func (t *T) Fail() {
	t.mu.Lock()
	t.failed = true
	t.mu.Unlock()
}

// FailNow marks the case failed and stops the body.
func (t *T) FailNow() {
	t.Fail()
	runtime.Goexit()
}

// Fatalf is Errorf followed by FailNow.
func (t *T) Fatalf(format string, args ...interface{}) {
	t.Errorf(format, args...)
	runtime.Goexit()
}

// Failed reports whether the case has failed so far.
func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Skip marks the case skipped and stops the body.
func (t *T) Skip(reason string) {
	t.mu.Lock()
	t.skipped = true
	t.skipReason = reason
	t.mu.Unlock()
	runtime.Goexit()
}

// Logf adds an info entry to the test record.
func (t *T) Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.logger.Info(msg)
	if err := t.test.Info(msg); err != nil {
		t.logger.Debug("Info entry dropped.", zap.Error(err))
	}
}

// Step records fn as a named step. The step is completed, and captured when
// step screenshots are on, only if fn returns normally; a step cut short by
// FailNow stays RUNNING in the report.
func (t *T) Step(description string, fn func()) {
	if err := t.test.LogStep(description); err != nil {
		t.logger.Warn("Cannot log step.", zap.String("step", description), zap.Error(err))
	}
	fn()
	if t.onStep {
		path, err := t.shots.Capture(t.ctx, t.page, t.name, description, screenshot.Step)
		if err != nil {
			t.logger.Warn("Step screenshot failed.", zap.String("step", description), zap.Error(err))
		} else if err := t.test.AttachScreenshot(reporting.ShotStep, path); err != nil {
			t.logger.Debug("Screenshot reference dropped.", zap.Error(err))
		}
	}
	if err := t.test.CompleteStep(description); err != nil {
		t.logger.Warn("Cannot complete step.", zap.String("step", description), zap.Error(err))
	}
}

// Metric records how long an action took against the current page URL.
func (t *T) Metric(action string, took time.Duration) {
	u, err := t.page.CurrentURL(t.ctx)
	if err != nil {
		u = ""
	}
	if err := t.test.RecordMetric(action, took, u); err != nil {
		t.logger.Debug("Metric dropped.", zap.String("action", action), zap.Error(err))
	}
}

// Time runs fn and records its duration as a metric.
func (t *T) Time(action string, fn func()) {
	start := time.Now()
	fn()
	t.Metric(action, time.Since(start))
}

type outcome struct {
	failed     bool
	skipped    bool
	skipReason string
	details    string
}

func (t *T) outcome() outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return outcome{
		failed:     t.failed,
		skipped:    t.skipped && !t.failed,
		skipReason: t.skipReason,
		details:    strings.Join(t.errs, "\n"),
	}
}
