// internal/browser/pwengine/page.go
package pwengine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

// Page adapts a playwright.Page to browser.Page. Playwright calls are
// synchronous, so the context only contributes its deadline.
type Page struct {
	page   playwright.Page
	bctx   playwright.BrowserContext
	cfg    config.BrowserConfig
	logger *zap.Logger
	closed atomic.Bool
}

var (
	_ browser.Page            = (*Page)(nil)
	_ browser.FullPager       = (*Page)(nil)
	_ browser.ElementCapturer = (*Page)(nil)
)

// Selector renders a locator in Playwright's selector syntax.
func Selector(loc browser.Locator) (string, error) {
	if loc.By == browser.ByXPath {
		return "xpath=" + loc.Value, nil
	}
	if css, ok := loc.CSSSelector(); ok {
		return css, nil
	}
	return "", fmt.Errorf("%s: %w", loc, browser.ErrUnsupportedLocator)
}

// timeoutMs caps def by whatever is left of ctx's deadline.
func timeoutMs(ctx context.Context, def time.Duration) *float64 {
	d := def
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *Page) ready(ctx context.Context) error {
	if p.closed.Load() {
		return browser.ErrSessionClosed
	}
	return ctx.Err()
}

func (p *Page) locate(ctx context.Context, loc browser.Locator) (playwright.Locator, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	sel, err := Selector(loc)
	if err != nil {
		return nil, err
	}
	return p.page.Locator(sel).First(), nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.ready(ctx); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   timeoutMs(ctx, p.cfg.PageLoadTimeout),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	if err := p.ready(ctx); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := p.ready(ctx); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	l, err := p.locate(ctx, loc)
	if err != nil {
		return err
	}
	if err := l.Click(playwright.LocatorClickOptions{Timeout: timeoutMs(ctx, p.cfg.ImplicitWait)}); err != nil {
		return p.actionErr("click", loc, err)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, loc browser.Locator, value string) error {
	l, err := p.locate(ctx, loc)
	if err != nil {
		return err
	}
	if err := l.Fill(value, playwright.LocatorFillOptions{Timeout: timeoutMs(ctx, p.cfg.ImplicitWait)}); err != nil {
		return p.actionErr("fill", loc, err)
	}
	return nil
}

func (p *Page) Text(ctx context.Context, loc browser.Locator) (string, error) {
	l, err := p.locate(ctx, loc)
	if err != nil {
		return "", err
	}
	text, err := l.InnerText(playwright.LocatorInnerTextOptions{Timeout: timeoutMs(ctx, p.cfg.ImplicitWait)})
	if err != nil {
		return "", p.actionErr("read text of", loc, err)
	}
	return text, nil
}

func (p *Page) AllText(ctx context.Context, loc browser.Locator) ([]string, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	sel, err := Selector(loc)
	if err != nil {
		return nil, err
	}
	texts, err := p.page.Locator(sel).AllInnerTexts()
	if err != nil {
		return nil, fmt.Errorf("read texts of %s: %w", loc, err)
	}
	return texts, nil
}

func (p *Page) Count(ctx context.Context, loc browser.Locator) (int, error) {
	if err := p.ready(ctx); err != nil {
		return 0, err
	}
	sel, err := Selector(loc)
	if err != nil {
		return 0, err
	}
	return p.page.Locator(sel).Count()
}

func (p *Page) SelectOption(ctx context.Context, loc browser.Locator, value string) error {
	l, err := p.locate(ctx, loc)
	if err != nil {
		return err
	}
	_, err = l.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.LocatorSelectOptionOptions{Timeout: timeoutMs(ctx, p.cfg.ImplicitWait)})
	if err != nil {
		return p.actionErr("select option in", loc, err)
	}
	return nil
}

func (p *Page) WaitFor(ctx context.Context, loc browser.Locator, state browser.WaitState, timeout time.Duration) (bool, error) {
	l, err := p.locate(ctx, loc)
	if err != nil {
		return false, err
	}
	var st *playwright.WaitForSelectorState
	switch state {
	case browser.StateHidden:
		st = playwright.WaitForSelectorStateHidden
	case browser.StateAttached:
		st = playwright.WaitForSelectorStateAttached
	default:
		st = playwright.WaitForSelectorStateVisible
	}

	err = l.WaitFor(playwright.LocatorWaitForOptions{State: st, Timeout: timeoutMs(ctx, timeout)})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, playwright.ErrTimeout):
		return false, nil
	default:
		return false, fmt.Errorf("wait for %s to be %s: %w", loc, state, err)
	}
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	return p.page.Screenshot(playwright.PageScreenshotOptions{Type: playwright.ScreenshotTypePng})
}

func (p *Page) FullPageScreenshot(ctx context.Context) ([]byte, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		Type:     playwright.ScreenshotTypePng,
		FullPage: playwright.Bool(true),
	})
}

func (p *Page) ElementScreenshot(ctx context.Context, loc browser.Locator) ([]byte, error) {
	l, err := p.locate(ctx, loc)
	if err != nil {
		return nil, err
	}
	return l.Screenshot(playwright.LocatorScreenshotOptions{
		Type:    playwright.ScreenshotTypePng,
		Timeout: timeoutMs(ctx, p.cfg.ImplicitWait),
	})
}

// Close closes the page's BrowserContext. Calling it twice is a no-op.
func (p *Page) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := p.bctx.Close(); err != nil {
		p.logger.Debug("Browser context close failed.", zap.Error(err))
		return fmt.Errorf("close browser context: %w", err)
	}
	return nil
}

func (p *Page) actionErr(verb string, loc browser.Locator, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s %s: %w: %v", verb, loc, browser.ErrElementNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", verb, loc, err)
}
