// internal/browser/wdengine/launcher.go
package wdengine

import (
	"context"
	"fmt"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

// EngineName identifies this engine in logs and reports.
const EngineName = config.EngineWebDriver

// Launcher talks to a WebDriver endpoint. With no remote URL configured it
// starts a local chromedriver service; every page is its own WebDriver session.
type Launcher struct {
	cfg       config.BrowserConfig
	service   *selenium.Service
	urlPrefix string
	logger    *zap.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// Launch prepares the driver endpoint. Sessions are created lazily by NewPage.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Launcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := &Launcher{cfg: cfg, logger: logger.Named("webdriver")}

	if cfg.WebDriver.RemoteURL != "" {
		l.urlPrefix = cfg.WebDriver.RemoteURL
		l.logger.Info("Using remote WebDriver endpoint.", zap.String("url", l.urlPrefix))
		return l, nil
	}

	svc, err := selenium.NewChromeDriverService(cfg.WebDriver.DriverPath, cfg.WebDriver.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver at %s: %w", cfg.WebDriver.DriverPath, err)
	}
	l.service = svc
	l.urlPrefix = fmt.Sprintf("http://localhost:%d/wd/hub", cfg.WebDriver.Port)
	l.logger.Info("Started local chromedriver.", zap.Int("port", cfg.WebDriver.Port))
	return l, nil
}

// Capabilities builds the chrome capabilities for a new session.
func Capabilities(cfg config.BrowserConfig) selenium.Capabilities {
	caps := selenium.Capabilities{"browserName": "chrome"}

	args := append([]string(nil), cfg.Args...)
	args = append(args, fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	if cfg.IgnoreTLSErrors {
		args = append(args, "--ignore-certificate-errors")
	}

	caps.AddChrome(chrome.Capabilities{
		Args: args,
		Path: cfg.BinaryPath,
		W3C:  true,
	})
	return caps
}

func (l *Launcher) Name() string { return EngineName }

// NewPage opens a WebDriver session.
func (l *Launcher) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wd, err := selenium.NewRemote(Capabilities(l.cfg), l.urlPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdriver session: %w", err)
	}

	// Implicit wait stays at zero. Lookups poll explicitly, bounded per call.
	if err := wd.SetImplicitWaitTimeout(0); err != nil {
		_ = wd.Quit()
		return nil, fmt.Errorf("failed to reset implicit wait: %w", err)
	}
	if err := wd.SetPageLoadTimeout(l.cfg.PageLoadTimeout); err != nil {
		_ = wd.Quit()
		return nil, fmt.Errorf("failed to set page load timeout: %w", err)
	}

	return &Page{wd: wd, cfg: l.cfg, logger: l.logger}, nil
}

// Shutdown stops the local chromedriver service if this launcher started one.
func (l *Launcher) Shutdown(ctx context.Context) error {
	if l.service == nil {
		return nil
	}
	if err := l.service.Stop(); err != nil {
		return fmt.Errorf("failed to stop chromedriver: %w", err)
	}
	return nil
}
