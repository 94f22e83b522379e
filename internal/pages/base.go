// internal/pages/base.go
package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

// Settings are the timing and target values every page object shares.
type Settings struct {
	BaseURL string
	// WaitTimeout bounds each wait for an element to reach a state.
	WaitTimeout time.Duration
	// SettleDelay is slept after actions that trigger client-side rendering.
	SettleDelay time.Duration
}

// SettingsFrom pulls page settings out of the run configuration.
func SettingsFrom(cfg config.Interface) Settings {
	return Settings{
		BaseURL:     cfg.Target().BaseURL,
		WaitTimeout: cfg.Runner().WaitTimeout,
		SettleDelay: cfg.Runner().SettleDelay,
	}
}

// Base holds the helpers the concrete pages are built from. It keeps no
// state beyond the page it wraps.
type Base struct {
	page     browser.Page
	settings Settings
	logger   *zap.Logger
}

func newBase(p browser.Page, s Settings, logger *zap.Logger, name string) Base {
	if s.WaitTimeout <= 0 {
		s.WaitTimeout = 5 * time.Second
	}
	return Base{page: p, settings: s, logger: logger.Named("pages").Named(name)}
}

// Page exposes the wrapped browser page.
func (b Base) Page() browser.Page { return b.page }

// Open navigates to path relative to the base URL.
func (b Base) Open(ctx context.Context, path string) error {
	url := strings.TrimRight(b.settings.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if path == "" {
		url = b.settings.BaseURL
	}
	b.logger.Debug("Navigating.", zap.String("url", url))
	if err := b.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (b Base) Title(ctx context.Context) (string, error) {
	return b.page.Title(ctx)
}

func (b Base) CurrentURL(ctx context.Context) (string, error) {
	return b.page.CurrentURL(ctx)
}

// IsVisible waits up to the configured timeout for loc to be visible.
// A timeout is a plain false; err is only set when the session misbehaves.
func (b Base) IsVisible(ctx context.Context, loc browser.Locator) (bool, error) {
	return b.IsVisibleWithin(ctx, loc, b.settings.WaitTimeout)
}

// IsVisibleWithin is IsVisible with an explicit bound.
func (b Base) IsVisibleWithin(ctx context.Context, loc browser.Locator, timeout time.Duration) (bool, error) {
	return b.page.WaitFor(ctx, loc, browser.StateVisible, timeout)
}

// IsHidden waits for loc to be hidden or detached.
func (b Base) IsHidden(ctx context.Context, loc browser.Locator) (bool, error) {
	return b.page.WaitFor(ctx, loc, browser.StateHidden, b.settings.WaitTimeout)
}

// IsPresent waits for loc to be attached to the DOM, visible or not.
func (b Base) IsPresent(ctx context.Context, loc browser.Locator) (bool, error) {
	return b.page.WaitFor(ctx, loc, browser.StateAttached, b.settings.WaitTimeout)
}

// displayed collapses IsVisible to a bool, logging session errors.
func (b Base) displayed(ctx context.Context, loc browser.Locator) bool {
	ok, err := b.IsVisible(ctx, loc)
	if err != nil {
		b.logger.Warn("Visibility check failed.", zap.Stringer("locator", loc), zap.Error(err))
		return false
	}
	return ok
}

func (b Base) waitVisible(ctx context.Context, loc browser.Locator) error {
	ok, err := b.IsVisible(ctx, loc)
	if err != nil {
		return fmt.Errorf("wait for %s: %w", loc, err)
	}
	if !ok {
		return fmt.Errorf("%s not visible after %s: %w", loc, b.settings.WaitTimeout, browser.ErrElementNotFound)
	}
	return nil
}

// Click waits for loc to be visible and clicks it.
func (b Base) Click(ctx context.Context, loc browser.Locator) error {
	if err := b.waitVisible(ctx, loc); err != nil {
		return err
	}
	if err := b.page.Click(ctx, loc); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

// Fill waits for loc to be visible and replaces its value.
func (b Base) Fill(ctx context.Context, loc browser.Locator, value string) error {
	if err := b.waitVisible(ctx, loc); err != nil {
		return err
	}
	if err := b.page.Fill(ctx, loc, value); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

// Text waits for loc to be visible and returns its trimmed text.
func (b Base) Text(ctx context.Context, loc browser.Locator) (string, error) {
	if err := b.waitVisible(ctx, loc); err != nil {
		return "", err
	}
	s, err := b.page.Text(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("text of %s: %w", loc, err)
	}
	return strings.TrimSpace(s), nil
}

// Count returns how many elements match loc right now.
func (b Base) Count(ctx context.Context, loc browser.Locator) (int, error) {
	n, err := b.page.Count(ctx, loc)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", loc, err)
	}
	return n, nil
}

// Settle sleeps for the configured delay or until ctx is done.
func (b Base) Settle(ctx context.Context) error {
	if b.settings.SettleDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(b.settings.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (b Base) urlContains(ctx context.Context, fragment string) bool {
	u, err := b.page.CurrentURL(ctx)
	if err != nil {
		b.logger.Warn("Cannot read current URL.", zap.Error(err))
		return false
	}
	return strings.Contains(strings.ToLower(u), fragment)
}
