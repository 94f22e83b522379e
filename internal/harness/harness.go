// internal/harness/harness.go
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/pages"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/reporting"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/screenshot"
)

const teardownTimeout = 10 * time.Second

// Case is one engine-independent test.
type Case struct {
	Name        string
	Description string
	// Feature groups cases, e.g. "login" or "cart".
	Feature string
	Tags    []string
	Run     func(t *T)
}

// Sessions hands out one page per case.
type Sessions interface {
	NewPage(ctx context.Context) (browser.Page, error)
}

// Harness wires sessions, the recorder and the capturer around each case.
type Harness struct {
	cfg      config.Interface
	sessions Sessions
	rec      *reporting.Recorder
	shots    *screenshot.Capturer
	settings pages.Settings
	logger   *zap.Logger
	progress io.Writer
}

// Option customizes a Harness.
type Option func(*Harness)

// WithRecorder replaces the recorder built from the configuration.
func WithRecorder(r *reporting.Recorder) Option {
	return func(h *Harness) { h.rec = r }
}

// WithCapturer replaces the capturer built from the configuration.
func WithCapturer(c *screenshot.Capturer) Option {
	return func(h *Harness) { h.shots = c }
}

// WithProgress renders a progress bar on w while Run is active.
func WithProgress(w io.Writer) Option {
	return func(h *Harness) { h.progress = w }
}

// New builds a harness for one run.
func New(cfg config.Interface, sessions Sessions, logger *zap.Logger, opts ...Option) *Harness {
	h := &Harness{
		cfg:      cfg,
		sessions: sessions,
		settings: pages.SettingsFrom(cfg),
		logger:   logger.Named("harness"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rec == nil {
		h.rec = reporting.NewRecorder(RecorderOptions(cfg), logger)
	}
	if h.shots == nil {
		h.shots = screenshot.New(cfg.Report().Dir, cfg.Screenshots().Dir, logger)
	}
	return h
}

// RecorderOptions derives recorder options from the run configuration.
func RecorderOptions(cfg config.Interface) reporting.Options {
	b, r := cfg.Browser(), cfg.Report()
	return reporting.Options{
		Dir:         r.Dir,
		EngineLabel: r.EngineLabel,
		Environment: r.Environment,
		Engine:      b.Engine,
		BrowserType: b.Type,
		Headless:    b.Headless,
		BaseURL:     cfg.Target().BaseURL,
		ThresholdMs: r.PerformanceThresholdMs,
	}
}

func (h *Harness) Recorder() *reporting.Recorder  { return h.rec }
func (h *Harness) Capturer() *screenshot.Capturer { return h.shots }

// Begin is the session-start hook. It prunes screenshots older than the
// retention window; zero days keeps everything.
func (h *Harness) Begin() int {
	days := h.cfg.Screenshots().RetentionDays
	h.logger.Info("Run starting.",
		zap.String("run_id", h.rec.RunID()),
		zap.String("reports", h.rec.Dir()),
		zap.Int("retention_days", days),
	)
	if days <= 0 {
		return 0
	}
	n, err := h.shots.CleanupOld(days)
	if err != nil {
		h.logger.Warn("Screenshot cleanup failed.", zap.Error(err))
	}
	return n
}

// RunCase runs one case on its own page and finalizes its record.
func (h *Harness) RunCase(ctx context.Context, c Case) reporting.Status {
	test := h.rec.Open(c.Name, c.Description)
	logger := h.logger.With(zap.String("test", c.Name))
	for _, line := range []string{"Module: " + c.Feature, "Function: " + c.Name} {
		if err := test.Info(line); err != nil {
			logger.Debug("Info entry dropped.", zap.Error(err))
		}
	}

	if timeout := h.cfg.Runner().CaseTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	page, err := h.sessions.NewPage(ctx)
	if err != nil {
		logger.Error("Could not acquire a browser session.", zap.Error(err))
		h.finalize(logger, test.Fail("Session acquisition failed", "", err.Error()))
		return reporting.StatusFailed
	}
	defer func() {
		tctx, cancel := browser.Teardown(ctx, teardownTimeout)
		defer cancel()
		if err := page.Close(tctx); err != nil {
			logger.Warn("Error closing page.", zap.Error(err))
		}
	}()

	t := &T{
		ctx:      ctx,
		name:     c.Name,
		page:     page,
		settings: h.settings,
		target:   h.cfg.Target(),
		test:     test,
		shots:    h.shots,
		onStep:   h.cfg.Screenshots().OnStep,
		logger:   logger,
	}
	h.runBody(ctx, t, c.Run)
	return h.complete(ctx, t, c)
}

// runBody runs fn on its own goroutine so FailNow and Skip can unwind it.
// Page calls fail fast once ctx is done, so waiting for the body is bounded
// by the case timeout.
func (h *Harness) runBody(ctx context.Context, t *T, fn func(*T)) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("panic: %v", r)
			}
		}()
		fn(t)
	}()
	<-done

	if err := ctx.Err(); err != nil {
		t.Errorf("case aborted: %v", err)
	}
}

// complete is the call-completion hook.
func (h *Harness) complete(ctx context.Context, t *T, c Case) reporting.Status {
	out := t.outcome()
	sctx, cancel := browser.Teardown(ctx, teardownTimeout)
	defer cancel()
	shots := h.cfg.Screenshots()

	switch {
	case out.skipped:
		h.finalize(t.logger, t.test.Skip("Test skipped", out.skipReason))
		return reporting.StatusSkipped
	case out.failed:
		var path string
		if shots.OnFailure {
			path = h.capture(sctx, t, "test_failure", screenshot.Failure)
		}
		h.fullPage(sctx, t, shots.FullPage, "test_failure")
		h.finalize(t.logger, t.test.Fail(fmt.Sprintf("Test failed: %s", c.Name), path, out.details))
		return reporting.StatusFailed
	default:
		var path string
		if shots.OnSuccess {
			path = h.capture(sctx, t, "test_success", screenshot.Success)
		}
		h.fullPage(sctx, t, shots.FullPage, "test_success")
		h.finalize(t.logger, t.test.Pass(fmt.Sprintf("Test passed: %s", c.Name), path))
		return reporting.StatusPassed
	}
}

func (h *Harness) capture(ctx context.Context, t *T, desc string, cat screenshot.Category) string {
	path, err := h.shots.Capture(ctx, t.page, t.name, desc, cat)
	if err != nil {
		t.logger.Warn("Screenshot failed.", zap.String("category", string(cat)), zap.Error(err))
		return ""
	}
	return path
}

func (h *Harness) fullPage(ctx context.Context, t *T, enabled bool, desc string) {
	if !enabled {
		return
	}
	path, err := h.shots.CaptureFullPage(ctx, t.page, t.name, desc)
	if err != nil {
		t.logger.Warn("Full page screenshot failed.", zap.Error(err))
		return
	}
	if err := t.test.Info("Full page screenshot: " + path); err != nil {
		t.logger.Debug("Info entry dropped.", zap.Error(err))
	}
}

func (h *Harness) finalize(logger *zap.Logger, err error) {
	if err != nil {
		logger.Warn("Could not finalize test record.", zap.Error(err))
	}
}

// Run executes cases with the configured number of workers and returns the
// run statistics. Case failures are not errors; only ctx cancellation is.
func (h *Harness) Run(ctx context.Context, cases []Case) (reporting.Statistics, error) {
	workers := h.cfg.Runner().Workers
	if workers <= 0 {
		workers = 1
	}
	h.logger.Info("Running cases.", zap.Int("cases", len(cases)), zap.Int("workers", workers))

	bar := newProgress(h.progress, len(cases))
	var (
		mu             sync.Mutex
		passed, failed int
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			status := h.RunCase(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			if status == reporting.StatusFailed {
				failed++
			} else {
				passed++
			}
			bar.update(passed, failed)
			return nil
		})
	}
	_ = g.Wait()
	bar.finish()

	if err := ctx.Err(); err != nil {
		return h.rec.Statistics(), fmt.Errorf("run interrupted: %w", err)
	}
	return h.rec.Statistics(), nil
}

// Artifacts lists what Finish wrote.
type Artifacts struct {
	HTML        string
	JSON        string
	JUnit       string
	Screenshots screenshot.Statistics
}

// Finish is the session-end hook. It renders the enabled reports; every
// write failure is returned.
func (h *Harness) Finish() (Artifacts, error) {
	var (
		art  Artifacts
		errs []error
	)
	r := h.cfg.Report()
	write := func(enabled bool, kind string, fn func() (string, error), dst *string) {
		if !enabled {
			return
		}
		path, err := fn()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s report: %w", kind, err))
			return
		}
		*dst = path
	}
	write(r.HTML, "html", h.rec.GenerateHTMLReport, &art.HTML)
	write(r.JSON, "json", h.rec.SaveJSONReport, &art.JSON)
	write(r.JUnit, "junit", h.rec.SaveJUnitReport, &art.JUnit)

	art.Screenshots = h.shots.Statistics()
	h.logger.Info("Run finished.",
		zap.String("html", art.HTML),
		zap.String("json", art.JSON),
		zap.String("junit", art.JUnit),
		zap.Int("screenshots", art.Screenshots.Total),
	)
	return art, errors.Join(errs...)
}
