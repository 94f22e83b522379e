// cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser/engines"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/harness"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/observability"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/suites"
)

// ErrCasesFailed makes the process exit non-zero when any case failed.
var ErrCasesFailed = errors.New("test cases failed")

const shutdownTimeout = 30 * time.Second

// sessionProvider is what the run command needs from a browser manager.
type sessionProvider interface {
	harness.Sessions
	Shutdown(ctx context.Context) error
}

// newSessions is swapped out in tests so the command runs without a browser.
var newSessions = func(cfg config.Interface, install bool, logger *zap.Logger) (sessionProvider, error) {
	return engines.NewManager(cfg.Browser(), install, logger)
}

type runOptions struct {
	engine   string
	headless bool
	baseURL  string
	workers  int
	features []string
	tags     []string
	install  bool
	list     bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the end-to-end cases against the shop",
		Long: `Runs the selected cases, one browser page per case, and writes the HTML,
JSON and JUnit reports plus screenshots under the reports directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, opts)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runCases(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts)
		},
	}

	f := runCmd.Flags()
	f.StringVarP(&opts.engine, "engine", "e", "", fmt.Sprintf("browser engine, one of %s (overrides config/env)", strings.Join(engines.Names, ", ")))
	f.BoolVar(&opts.headless, "headless", true, "run the browser headless (overrides config/env)")
	f.StringVar(&opts.baseURL, "base-url", "", "shop URL (overrides config/env)")
	f.IntVarP(&opts.workers, "workers", "j", 0, "cases run in parallel (overrides config/env)")
	f.StringSliceVar(&opts.features, "feature", nil, "only run these features, e.g. login,cart")
	f.StringSliceVar(&opts.tags, "tag", nil, "only run cases with one of these tags, e.g. smoke")
	f.BoolVar(&opts.install, "install", false, "install the playwright driver and browsers before running")
	f.BoolVar(&opts.list, "list", false, "list the selected cases and exit")
	return runCmd
}

// applyRunFlags copies explicitly set flags onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg config.Interface, opts runOptions) {
	f := cmd.Flags()
	if f.Changed("engine") {
		cfg.SetBrowserEngine(opts.engine)
	}
	if f.Changed("headless") {
		cfg.SetBrowserHeadless(opts.headless)
	}
	if f.Changed("base-url") {
		cfg.SetTargetBaseURL(opts.baseURL)
	}
	if f.Changed("workers") {
		cfg.SetRunnerWorkers(opts.workers)
	}
	if f.Changed("feature") || f.Changed("tag") {
		features, tags := cfg.Runner().Features, cfg.Runner().Tags
		if f.Changed("feature") {
			features = opts.features
		}
		if f.Changed("tag") {
			tags = opts.tags
		}
		cfg.SetRunnerFilters(features, tags)
	}
}

func runCases(ctx context.Context, stdout, stderr io.Writer, cfg config.Interface, opts runOptions) error {
	logger := observability.GetLogger()
	r := cfg.Runner()

	cases := suites.Select(suites.All(), r.Features, r.Tags)
	if len(cases) == 0 {
		return fmt.Errorf("no cases match features %v and tags %v", r.Features, r.Tags)
	}
	if opts.list {
		for _, c := range cases {
			fmt.Fprintf(stdout, "%-36s %-10s %s\n", c.Name, c.Feature, strings.Join(c.Tags, ","))
		}
		return nil
	}

	sessions, err := newSessions(cfg, opts.install, logger)
	if err != nil {
		return fmt.Errorf("failed to set up browser engine: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sessions.Shutdown(sctx); err != nil {
			logger.Warn("Browser engine shutdown failed.", zap.Error(err))
		}
	}()

	var hopts []harness.Option
	if r.ShowSummary {
		hopts = append(hopts, harness.WithProgress(stderr))
	}
	h := harness.New(cfg, sessions, logger, hopts...)
	h.Begin()

	stats, runErr := h.Run(ctx, cases)
	art, finishErr := h.Finish()
	if r.ShowSummary {
		harness.PrintSummary(stdout, stats, art)
	}

	switch {
	case runErr != nil:
		return runErr
	case finishErr != nil:
		return fmt.Errorf("failed to write reports: %w", finishErr)
	case stats.Failed > 0:
		return fmt.Errorf("%w: %d of %d", ErrCasesFailed, stats.Failed, stats.Total)
	}
	return nil
}
