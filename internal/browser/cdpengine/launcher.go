// internal/browser/cdpengine/launcher.go
package cdpengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

// EngineName identifies this engine in logs and reports.
const EngineName = config.EngineCDP

const shutdownTimeout = 10 * time.Second

// Launcher owns a chromedp exec allocator. Each page runs in its own browser
// process so pages share no cookies or storage.
type Launcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	logger      *zap.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// Launch creates the allocator. Chrome itself starts with the first page.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Launcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// The allocator outlives the caller's context; Shutdown ends it.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), AllocatorOptions(cfg)...)
	return &Launcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		cfg:         cfg,
		logger:      logger.Named("chromedp"),
	}, nil
}

// AllocatorOptions translates the browser configuration into exec allocator flags.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		chromedp.Flag("enable-automation", true),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.BinaryPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BinaryPath))
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.IgnoreCertErrors)
	}
	for _, arg := range cfg.Args {
		key, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if found {
			opts = append(opts, chromedp.Flag(key, value))
		} else {
			opts = append(opts, chromedp.Flag(key, true))
		}
	}
	return opts
}

func (l *Launcher) Name() string { return EngineName }

// NewPage starts a browser and returns its first tab.
func (l *Launcher) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, tabCancel := chromedp.NewContext(l.allocCtx,
		chromedp.WithLogf(l.logger.Sugar().Debugf),
		chromedp.WithErrorf(l.logger.Sugar().Debugf),
	)

	// The first Run allocates the browser and binds its lifetime to the
	// context it is given, so it must be tabCtx itself and not a derived one.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			tabCancel()
			return nil, fmt.Errorf("failed to start chrome: %w", err)
		}
	case <-ctx.Done():
		tabCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", ctx.Err())
	}

	return &Page{tabCtx: tabCtx, tabCancel: tabCancel, cfg: l.cfg, logger: l.logger}, nil
}

// Shutdown cancels the allocator, which kills any browser still running.
func (l *Launcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.allocCancel()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("allocator shutdown: %w", ctx.Err())
	}
}
