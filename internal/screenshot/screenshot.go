// internal/screenshot/screenshot.go
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
)

// ErrNoSource is returned when a capture is requested without a live page.
var ErrNoSource = errors.New("no page to capture")

// Category decides the file name prefix and the directory a capture lands in.
type Category string

const (
	Success  Category = "SUCCESS"
	Failure  Category = "FAILURE"
	Step     Category = "STEP"
	FullPage Category = "FULLPAGE"
	Element  Category = "ELEMENT"
	Custom   Category = "CUSTOM"
)

// Dir is the category's sub-directory under the screenshots root.
func (c Category) Dir() string {
	switch c {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Step:
		return "steps"
	case FullPage:
		return "fullpage"
	case Element:
		return "elements"
	default:
		return ""
	}
}

var allCategories = []Category{Success, Failure, Step, FullPage, Element, Custom}

const (
	maxNameLen = 50
	stampLayout = "2006-01-02_15-04-05"
)

// Result describes one written capture.
type Result struct {
	Category Category
	// Path is relative to the reports root, slash separated.
	Path     string
	AbsPath  string
	Bytes    int
	Duration time.Duration
	TakenAt  time.Time
}

// Capturer writes categorized screenshots. It is safe for concurrent use.
type Capturer struct {
	reportsDir string
	root       string
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	lastStamp time.Time
	counts    map[Category]int
	totalTime time.Duration
}

// New returns a capturer writing under screenshotsDir. Returned paths are
// made relative to reportsDir so HTML reports can link them.
func New(reportsDir, screenshotsDir string, logger *zap.Logger) *Capturer {
	return &Capturer{
		reportsDir: reportsDir,
		root:       screenshotsDir,
		logger:     logger.Named("screenshot"),
		now:        time.Now,
		counts:     make(map[Category]int),
	}
}

// Root is the screenshots directory.
func (c *Capturer) Root() string { return c.root }

// Capture takes a viewport screenshot of src and returns its path relative
// to the reports root.
func (c *Capturer) Capture(ctx context.Context, src browser.Page, testName, description string, cat Category) (string, error) {
	res, err := c.CaptureResult(ctx, src, testName, description, cat)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// CaptureResult is Capture with timing and size details.
func (c *Capturer) CaptureResult(ctx context.Context, src browser.Page, testName, description string, cat Category) (Result, error) {
	if src == nil {
		return Result{}, ErrNoSource
	}
	return c.capture(cat, testName, description, func() ([]byte, error) {
		return src.Screenshot(ctx)
	})
}

// CaptureFullPage captures the whole scrollable page. Engines without
// full-page support fall back to a viewport capture stored as a step.
func (c *Capturer) CaptureFullPage(ctx context.Context, src browser.Page, testName, description string) (string, error) {
	if src == nil {
		return "", ErrNoSource
	}
	if fp, ok := src.(browser.FullPager); ok {
		res, err := c.capture(FullPage, testName, description, func() ([]byte, error) {
			return fp.FullPageScreenshot(ctx)
		})
		if err == nil {
			return res.Path, nil
		}
		if !errors.Is(err, browser.ErrUnsupported) {
			return "", err
		}
	}
	c.logger.Debug("Full page capture unsupported, falling back to viewport.", zap.String("test", testName))
	return c.Capture(ctx, src, testName, description+"_FULLPAGE", Step)
}

// CaptureElement captures a single element.
func (c *Capturer) CaptureElement(ctx context.Context, src browser.Page, loc browser.Locator, testName, description string) (string, error) {
	if src == nil {
		return "", ErrNoSource
	}
	ec, ok := src.(browser.ElementCapturer)
	if !ok {
		return "", fmt.Errorf("element capture: %w", browser.ErrUnsupported)
	}
	res, err := c.capture(Element, testName, description, func() ([]byte, error) {
		return ec.ElementScreenshot(ctx, loc)
	})
	return res.Path, err
}

// CaptureCustom stores a capture under a caller-chosen name in the screenshots root.
func (c *Capturer) CaptureCustom(ctx context.Context, src browser.Page, name string) (string, error) {
	if src == nil {
		return "", ErrNoSource
	}
	res, err := c.capture(Custom, name, "", func() ([]byte, error) {
		return src.Screenshot(ctx)
	})
	return res.Path, err
}

func (c *Capturer) capture(cat Category, testName, description string, grab func() ([]byte, error)) (Result, error) {
	start := time.Now()

	data, err := grab()
	if err != nil {
		c.logger.Warn("Screenshot capture failed.", zap.String("category", string(cat)), zap.String("test", testName), zap.Error(err))
		return Result{}, fmt.Errorf("capture %s screenshot: %w", strings.ToLower(string(cat)), err)
	}

	dir := filepath.Join(c.root, cat.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create screenshot dir %s: %w", dir, err)
	}

	var (
		abs   string
		stamp time.Time
		f     *os.File
	)
	// A stamp collision with a file from another process is resolved by
	// bumping the stamp and retrying.
	for attempt := 0; ; attempt++ {
		stamp = c.nextStamp()
		abs = filepath.Join(dir, fileName(cat, testName, description, stamp))
		f, err = os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || attempt >= 100 {
			return Result{}, fmt.Errorf("create screenshot %s: %w", abs, err)
		}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(abs)
		return Result{}, fmt.Errorf("write screenshot %s: %w", abs, err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("close screenshot %s: %w", abs, err)
	}

	elapsed := time.Since(start)
	c.mu.Lock()
	c.counts[cat]++
	c.totalTime += elapsed
	c.mu.Unlock()

	res := Result{
		Category: cat,
		Path:     c.relative(abs),
		AbsPath:  abs,
		Bytes:    len(data),
		Duration: elapsed,
		TakenAt:  stamp,
	}
	c.logger.Info("Screenshot captured.",
		zap.String("category", string(cat)),
		zap.String("path", res.Path),
		zap.Duration("took", elapsed),
	)
	return res, nil
}

// nextStamp returns a millisecond timestamp strictly later than the previous one.
func (c *Capturer) nextStamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.now().Truncate(time.Millisecond)
	if !ts.After(c.lastStamp) {
		ts = c.lastStamp.Add(time.Millisecond)
	}
	c.lastStamp = ts
	return ts
}

func (c *Capturer) relative(abs string) string {
	rel, err := filepath.Rel(c.reportsDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// fileName builds <CATEGORY>_<test>_<description>_<yyyy-mm-dd_hh-mm-ss-mmm>.png.
// Custom captures carry only the sanitized name and the stamp.
func fileName(cat Category, testName, description string, ts time.Time) string {
	stamp := fmt.Sprintf("%s-%03d", ts.Format(stampLayout), ts.Nanosecond()/int(time.Millisecond))
	if cat == Custom {
		return fmt.Sprintf("%s_%s.png", Sanitize(testName), stamp)
	}
	return fmt.Sprintf("%s_%s_%s_%s.png", cat, Sanitize(testName), Sanitize(description), stamp)
}

// Sanitize makes s safe for a file name: characters outside [A-Za-z0-9._-]
// become underscores, runs of underscores collapse, leading and trailing
// underscores go, and the result is cut to 50 characters. Empty input
// yields "unnamed".
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '_' })
	out := strings.Join(parts, "_")
	if len(out) > maxNameLen {
		out = strings.TrimRight(out[:maxNameLen], "_")
	}
	if out == "" {
		return "unnamed"
	}
	return out
}

// CleanupOld deletes PNG files older than daysToKeep days from every
// screenshot directory and returns how many were removed. Errors on single
// files are logged and skipped.
func (c *Capturer) CleanupOld(daysToKeep int) (int, error) {
	if daysToKeep < 0 {
		return 0, fmt.Errorf("days to keep must not be negative, got %d", daysToKeep)
	}
	cutoff := c.now().Add(-time.Duration(daysToKeep) * 24 * time.Hour)

	deleted := 0
	for _, dir := range c.directories() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			c.logger.Warn("Cannot list screenshot dir.", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				c.logger.Warn("Cannot stat screenshot.", zap.String("file", e.Name()), zap.Error(err))
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if err := os.Remove(path); err != nil {
				c.logger.Warn("Cannot delete screenshot.", zap.String("file", path), zap.Error(err))
				continue
			}
			deleted++
		}
	}

	c.logger.Info("Old screenshots cleaned up.", zap.Int("deleted", deleted), zap.Int("days_to_keep", daysToKeep))
	return deleted, nil
}

// directories lists the root followed by each category directory.
func (c *Capturer) directories() []string {
	dirs := []string{c.root}
	for _, cat := range allCategories {
		if d := cat.Dir(); d != "" {
			dirs = append(dirs, filepath.Join(c.root, d))
		}
	}
	return dirs
}

// Statistics summarizes the captures taken by this capturer.
type Statistics struct {
	SuccessCount     int               `json:"success_count"`
	FailureCount     int               `json:"failure_count"`
	StepCount        int               `json:"step_count"`
	FullPageCount    int               `json:"fullpage_count"`
	ElementCount     int               `json:"element_count"`
	CustomCount      int               `json:"custom_count"`
	Total            int               `json:"total_screenshots"`
	TotalCaptureTime time.Duration     `json:"-"`
	TotalCaptureMs   int64             `json:"total_capture_time_ms"`
	AverageCaptureMs float64           `json:"average_capture_time_ms"`
	Directories      map[string]string `json:"directories"`
}

// Statistics returns a snapshot of capture counts and timing.
func (c *Capturer) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Statistics{
		SuccessCount:     c.counts[Success],
		FailureCount:     c.counts[Failure],
		StepCount:        c.counts[Step],
		FullPageCount:    c.counts[FullPage],
		ElementCount:     c.counts[Element],
		CustomCount:      c.counts[Custom],
		TotalCaptureTime: c.totalTime,
		TotalCaptureMs:   c.totalTime.Milliseconds(),
		Directories:      map[string]string{"base": c.root},
	}
	for _, n := range c.counts {
		s.Total += n
	}
	if s.Total > 0 {
		s.AverageCaptureMs = float64(c.totalTime.Microseconds()) / 1000 / float64(s.Total)
	}
	for _, cat := range allCategories {
		if d := cat.Dir(); d != "" {
			s.Directories[d] = filepath.Join(c.root, d)
		}
	}
	return s
}
