// internal/reporting/test.go
package reporting

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Test is a handle on one running test record. All methods are safe for
// concurrent use and become errors once the test is finalized.
type Test struct {
	rec        *Recorder
	record     TestRecord
	started    time.Time
	stepStarts map[string]time.Time
	done       bool
}

// ID is the record id, <name>_<unix seconds>.
func (t *Test) ID() string { return t.record.ID }

// Name is the test name.
func (t *Test) Name() string { return t.record.Name }

// Record returns a copy of the record in its current state.
func (t *Test) Record() TestRecord {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	return t.record.clone()
}

// Status returns the current status.
func (t *Test) Status() Status {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	return t.record.Status
}

func (t *Test) lock() error {
	t.rec.mu.Lock()
	if t.done {
		t.rec.mu.Unlock()
		t.rec.logger.Warn("Test already finalized.", zap.String("test", t.record.Name))
		return ErrNoActiveTest
	}
	return nil
}

// LogStep appends a RUNNING step.
func (t *Test) LogStep(description string) error {
	if err := t.lock(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()

	now := t.rec.now()
	id := fmt.Sprintf("step_%d", len(t.record.Steps))
	t.record.Steps = append(t.record.Steps, Step{
		ID:          id,
		Description: description,
		Timestamp:   now,
		Status:      StepRunning,
	})
	t.stepStarts[id] = now
	t.rec.logger.Debug("Step logged.", zap.String("test", t.record.Name), zap.String("step", description))
	return nil
}

// CompleteStep completes the most recently opened running step.
func (t *Test) CompleteStep(description string) error {
	if err := t.lock(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()

	for i := len(t.record.Steps) - 1; i >= 0; i-- {
		step := &t.record.Steps[i]
		if step.Status != StepRunning {
			continue
		}
		now := t.rec.now()
		var took float64
		if start, ok := t.stepStarts[step.ID]; ok {
			took = millis(now.Sub(start))
			delete(t.stepStarts, step.ID)
		}
		step.DurationMs = &took
		step.PerformanceLevel = LevelFor(took)
		step.Status = StepCompleted
		step.CompletedAt = &now
		t.rec.logger.Debug("Step completed.",
			zap.String("test", t.record.Name),
			zap.String("step", description),
			zap.Float64("duration_ms", took),
		)
		return nil
	}
	t.rec.logger.Warn("No running step to complete.", zap.String("test", t.record.Name), zap.String("step", description))
	return ErrNoRunningStep
}

// Info attaches an informational message.
func (t *Test) Info(message string) error {
	if err := t.lock(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()
	t.infoLocked(message)
	return nil
}

func (t *Test) infoLocked(message string) {
	t.record.InfoLogs = append(t.record.InfoLogs, LogEntry{Message: message, Timestamp: t.rec.now(), Level: "INFO"})
}

// Warn attaches a warning message.
func (t *Test) Warn(message string) error {
	if err := t.lock(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()
	t.record.WarningLogs = append(t.record.WarningLogs, LogEntry{Message: message, Timestamp: t.rec.now(), Level: "WARNING"})
	return nil
}

// RecordMetric stores a timed browser action.
func (t *Test) RecordMetric(action string, took time.Duration, url string) error {
	if err := t.lock(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()
	ms := millis(took)
	t.record.Metrics.WebMetrics = append(t.record.Metrics.WebMetrics, WebMetric{
		Action:           action,
		URL:              url,
		LoadTimeMs:       ms,
		PerformanceLevel: LevelFor(ms),
		Timestamp:        t.rec.now(),
	})
	return nil
}

// AttachScreenshot references a capture without finalizing the test.
func (t *Test) AttachScreenshot(kind, path string) error {
	if path == "" {
		return nil
	}
	if err := t.lock(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()
	t.attachLocked(kind, path)
	return nil
}

func (t *Test) attachLocked(kind, path string) {
	if path == "" {
		return
	}
	t.record.Screenshots = append(t.record.Screenshots, ScreenshotRef{Type: kind, Path: path, Timestamp: t.rec.now()})
}

func (t *Test) finish() error {
	t.rec.mu.Lock()
	if t.done {
		t.rec.mu.Unlock()
		t.rec.logger.Warn("Test already finalized.", zap.String("test", t.record.Name))
		return ErrTestFinalized
	}
	return nil
}

// Pass finalizes the test as PASSED.
func (t *Test) Pass(message, screenshotPath string) error {
	if err := t.finish(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()
	t.attachLocked(ShotSuccess, screenshotPath)
	t.rec.finalizeLocked(t, StatusPassed, message)
	t.rec.logger.Info("Test passed.", zap.String("test", t.record.Name), zap.String("message", message))
	return nil
}

// Fail finalizes the test as FAILED.
func (t *Test) Fail(message, screenshotPath, errorDetails string) error {
	if err := t.finish(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()
	t.attachLocked(ShotFailure, screenshotPath)
	if errorDetails != "" {
		t.record.ErrorDetails = errorDetails
	}
	t.rec.finalizeLocked(t, StatusFailed, message)
	t.rec.logger.Error("Test failed.", zap.String("test", t.record.Name), zap.String("message", message))
	return nil
}

// Skip finalizes the test as SKIPPED.
func (t *Test) Skip(message, reason string) error {
	if err := t.finish(); err != nil {
		return err
	}
	defer t.rec.mu.Unlock()
	t.record.SkipReason = reason
	t.rec.finalizeLocked(t, StatusSkipped, message)
	t.rec.logger.Warn("Test skipped.", zap.String("test", t.record.Name), zap.String("reason", reason))
	return nil
}
