// internal/harness/progress.go
package harness

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/reporting"
)

// progress is a nil-safe wrapper; a nil bar draws nothing.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(w io.Writer, total int) *progress {
	if w == nil || total == 0 {
		return &progress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &progress{bar: bar}
}

func describe(passed, failed int) string {
	return color.CyanString("Running cases: ") +
		color.GreenString("[ok: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

func (p *progress) update(passed, failed int) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(describe(passed, failed))
	_ = p.bar.Set(passed + failed)
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// PrintSummary writes a coloured run summary and the artifact paths to w.
func PrintSummary(w io.Writer, stats reporting.Statistics, art Artifacts) {
	bold := color.New(color.FgCyan, color.Bold)
	bold.Fprintln(w, "\nTest Execution Summary")
	fmt.Fprintf(w, "  %-16s %d\n", "Total:", stats.Total)
	color.New(color.FgGreen).Fprintf(w, "  %-16s %d\n", "Passed:", stats.Passed)
	color.New(color.FgRed).Fprintf(w, "  %-16s %d\n", "Failed:", stats.Failed)
	color.New(color.FgYellow).Fprintf(w, "  %-16s %d\n", "Skipped:", stats.Skipped)
	if stats.Abandoned > 0 {
		color.New(color.FgMagenta).Fprintf(w, "  %-16s %d\n", "Abandoned:", stats.Abandoned)
	}

	rate := color.New(color.FgGreen)
	if stats.Failed > 0 {
		rate = color.New(color.FgRed)
	}
	rate.Fprintf(w, "  %-16s %.1f%%\n", "Pass rate:", stats.PassPercentage())
	fmt.Fprintf(w, "  %-16s %.1fms\n", "Average time:", stats.AverageExecutionMs())
	fmt.Fprintf(w, "  %-16s %d\n", "Screenshots:", art.Screenshots.Total)

	for _, a := range []struct{ label, path string }{
		{"HTML report:", art.HTML},
		{"JSON report:", art.JSON},
		{"JUnit report:", art.JUnit},
	} {
		if a.path != "" {
			fmt.Fprintf(w, "  %-16s %s\n", a.label, a.path)
		}
	}
}
