// internal/browser/engines/engines.go
package engines

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser/cdpengine"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser/pwengine"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser/wdengine"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

// Names lists the engines New understands.
var Names = []string{config.EnginePlaywright, config.EngineWebDriver, config.EngineCDP}

// New returns a launcher factory for the configured engine, suitable for browser.NewManager.
func New(cfg config.BrowserConfig, installBrowsers bool, logger *zap.Logger) (func(ctx context.Context) (browser.Launcher, error), error) {
	switch cfg.Engine {
	case config.EnginePlaywright:
		return func(ctx context.Context) (browser.Launcher, error) {
			return pwengine.Launch(ctx, cfg, pwengine.Options{Install: installBrowsers}, logger)
		}, nil
	case config.EngineWebDriver:
		return func(ctx context.Context) (browser.Launcher, error) {
			return wdengine.Launch(ctx, cfg, logger)
		}, nil
	case config.EngineCDP:
		return func(ctx context.Context) (browser.Launcher, error) {
			return cdpengine.Launch(ctx, cfg, logger)
		}, nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q (want one of %v)", cfg.Engine, Names)
	}
}

// NewManager is a convenience wrapper that builds the launcher factory and a manager around it.
func NewManager(cfg config.BrowserConfig, installBrowsers bool, logger *zap.Logger) (*browser.Manager, error) {
	factory, err := New(cfg, installBrowsers, logger)
	if err != nil {
		return nil, err
	}
	return browser.NewManager(factory, logger), nil
}
