// internal/browser/pwengine/launcher.go
package pwengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

// EngineName identifies this engine in logs and reports.
const EngineName = config.EnginePlaywright

const installTimeout = 5 * time.Minute

// Options tune the launcher beyond what config.BrowserConfig carries.
type Options struct {
	// Install downloads the browser binaries before launching.
	Install bool
}

// Launcher runs one Playwright driver and one browser process. Every page
// gets its own BrowserContext, so cookies and storage never leak between tests.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     config.BrowserConfig
	logger  *zap.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// Launch starts the driver and the configured browser family.
func Launch(ctx context.Context, cfg config.BrowserConfig, opts Options, logger *zap.Logger) (*Launcher, error) {
	logger = logger.Named("playwright")

	if opts.Install {
		if err := install(ctx, cfg.Type); err != nil {
			return nil, err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright driver: %w", err)
	}

	var bt playwright.BrowserType
	switch cfg.Type {
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		bt = pw.Chromium
	}

	b, err := bt.Launch(launchOptions(cfg))
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Type, err)
	}

	logger.Info("Browser launched.", zap.String("type", cfg.Type), zap.String("version", b.Version()), zap.Bool("headless", cfg.Headless))
	return &Launcher{pw: pw, browser: b, cfg: cfg, logger: logger}, nil
}

func install(ctx context.Context, browserType string) error {
	installCtx, cancel := context.WithTimeout(ctx, installTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- playwright.Install(&playwright.RunOptions{Browsers: []string{browserType}})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to install playwright browsers: %w", err)
		}
		return nil
	case <-installCtx.Done():
		return fmt.Errorf("timeout waiting for playwright installation: %w", installCtx.Err())
	}
}

func launchOptions(cfg config.BrowserConfig) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Timeout:  playwright.Float(60000),
	}
	// Chromium-only switches make firefox and webkit refuse to start.
	if cfg.Type == "" || cfg.Type == "chromium" {
		opts.Args = append([]string(nil), cfg.Args...)
		opts.Args = append(opts.Args, fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight))
		if cfg.BinaryPath != "" {
			opts.ExecutablePath = playwright.String(cfg.BinaryPath)
		}
	}
	return opts
}

func (l *Launcher) Name() string { return EngineName }

// NewPage opens a fresh BrowserContext with a single page in it.
func (l *Launcher) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bctx, err := l.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  l.cfg.WindowWidth,
			Height: l.cfg.WindowHeight,
		},
		IgnoreHttpsErrors: playwright.Bool(l.cfg.IgnoreTLSErrors),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	bctx.SetDefaultTimeout(float64(l.cfg.ImplicitWait.Milliseconds()))
	bctx.SetDefaultNavigationTimeout(float64(l.cfg.PageLoadTimeout.Milliseconds()))

	p, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return &Page{page: p, bctx: bctx, cfg: l.cfg, logger: l.logger}, nil
}

// Shutdown closes the browser and stops the driver.
func (l *Launcher) Shutdown(ctx context.Context) error {
	var errs []error
	if err := l.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := l.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright driver: %w", err))
	}
	return errors.Join(errs...)
}
