// internal/browser/wdengine/page.go
package wdengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

const pollInterval = 100 * time.Millisecond

// Page adapts a WebDriver session to browser.Page.
type Page struct {
	wd     selenium.WebDriver
	cfg    config.BrowserConfig
	logger *zap.Logger
	closed atomic.Bool
}

var (
	_ browser.Page            = (*Page)(nil)
	_ browser.ElementCapturer = (*Page)(nil)
)

// By maps a locator onto a WebDriver strategy.
func By(loc browser.Locator) (string, string, error) {
	switch loc.By {
	case browser.ByCSS, "":
		return selenium.ByCSSSelector, loc.Value, nil
	case browser.ByID:
		return selenium.ByID, loc.Value, nil
	case browser.ByClassName:
		return selenium.ByClassName, loc.Value, nil
	case browser.ByXPath:
		return selenium.ByXPATH, loc.Value, nil
	case browser.ByName:
		return selenium.ByName, loc.Value, nil
	default:
		return "", "", fmt.Errorf("%s: %w", loc, browser.ErrUnsupportedLocator)
	}
}

// isNoSuchElement reports whether err is the W3C "no such element" error.
func isNoSuchElement(err error) bool {
	var se *selenium.Error
	if errors.As(err, &se) {
		return se.Err == "no such element" || se.Err == "stale element reference"
	}
	return err != nil && strings.Contains(err.Error(), "no such element")
}

func (p *Page) ready(ctx context.Context) error {
	if p.closed.Load() {
		return browser.ErrSessionClosed
	}
	return ctx.Err()
}

// poll evaluates cond until it reports done, ctx ends or timeout elapses.
// A timeout yields (false, nil).
func poll(ctx context.Context, timeout time.Duration, cond func() (bool, error)) (bool, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		done, err := cond()
		if err != nil || done {
			return done, err
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// find waits up to the implicit wait for the first match of loc.
func (p *Page) find(ctx context.Context, loc browser.Locator) (selenium.WebElement, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	by, value, err := By(loc)
	if err != nil {
		return nil, err
	}

	var el selenium.WebElement
	found, err := poll(ctx, p.cfg.ImplicitWait, func() (bool, error) {
		e, ferr := p.wd.FindElement(by, value)
		if ferr != nil {
			if isNoSuchElement(ferr) {
				return false, nil
			}
			return false, ferr
		}
		el = e
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}
	if !found {
		return nil, fmt.Errorf("find %s: %w", loc, browser.ErrElementNotFound)
	}
	return el, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.ready(ctx); err != nil {
		return err
	}
	if err := p.wd.Get(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	if err := p.ready(ctx); err != nil {
		return "", err
	}
	return p.wd.CurrentURL()
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := p.ready(ctx); err != nil {
		return "", err
	}
	return p.wd.Title()
}

// Click waits for the element to be displayed before clicking it.
func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	el, err := p.find(ctx, loc)
	if err != nil {
		return err
	}
	shown, err := poll(ctx, p.cfg.ImplicitWait, el.IsDisplayed)
	if err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	if !shown {
		return fmt.Errorf("click %s: element never became visible: %w", loc, browser.ErrElementNotFound)
	}
	if err := el.Click(); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, loc browser.Locator, value string) error {
	el, err := p.find(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", loc, err)
	}
	if err := el.SendKeys(value); err != nil {
		return fmt.Errorf("type into %s: %w", loc, err)
	}
	return nil
}

func (p *Page) Text(ctx context.Context, loc browser.Locator) (string, error) {
	el, err := p.find(ctx, loc)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (p *Page) AllText(ctx context.Context, loc browser.Locator) ([]string, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	by, value, err := By(loc)
	if err != nil {
		return nil, err
	}
	els, err := p.wd.FindElements(by, value)
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", loc, err)
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("read text of %s: %w", loc, err)
		}
		texts = append(texts, t)
	}
	return texts, nil
}

func (p *Page) Count(ctx context.Context, loc browser.Locator) (int, error) {
	if err := p.ready(ctx); err != nil {
		return 0, err
	}
	by, value, err := By(loc)
	if err != nil {
		return 0, err
	}
	els, err := p.wd.FindElements(by, value)
	if err != nil {
		if isNoSuchElement(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count %s: %w", loc, err)
	}
	return len(els), nil
}

// SelectOption clicks the <option> with the given value inside the select.
func (p *Page) SelectOption(ctx context.Context, loc browser.Locator, value string) error {
	el, err := p.find(ctx, loc)
	if err != nil {
		return err
	}
	opt, err := el.FindElement(selenium.ByCSSSelector, fmt.Sprintf("option[value=%q]", value))
	if err != nil {
		return fmt.Errorf("select %q in %s: %w", value, loc, err)
	}
	if err := opt.Click(); err != nil {
		return fmt.Errorf("select %q in %s: %w", value, loc, err)
	}
	return nil
}

func (p *Page) WaitFor(ctx context.Context, loc browser.Locator, state browser.WaitState, timeout time.Duration) (bool, error) {
	if err := p.ready(ctx); err != nil {
		return false, err
	}
	by, value, err := By(loc)
	if err != nil {
		return false, err
	}

	ok, err := poll(ctx, timeout, func() (bool, error) {
		el, ferr := p.wd.FindElement(by, value)
		if ferr != nil {
			if isNoSuchElement(ferr) {
				return state == browser.StateHidden, nil
			}
			return false, ferr
		}
		if state == browser.StateAttached {
			return true, nil
		}
		shown, derr := el.IsDisplayed()
		if derr != nil {
			if isNoSuchElement(derr) {
				return state == browser.StateHidden, nil
			}
			return false, derr
		}
		return shown == (state == browser.StateVisible), nil
	})
	if err != nil {
		return false, fmt.Errorf("wait for %s to be %s: %w", loc, state, err)
	}
	return ok, nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	return p.wd.Screenshot()
}

func (p *Page) ElementScreenshot(ctx context.Context, loc browser.Locator) ([]byte, error) {
	el, err := p.find(ctx, loc)
	if err != nil {
		return nil, err
	}
	return el.Screenshot(true)
}

// Close quits the WebDriver session. Calling it twice is a no-op.
func (p *Page) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := p.wd.Quit(); err != nil {
		p.logger.Debug("WebDriver quit failed.", zap.Error(err))
		return fmt.Errorf("quit webdriver session: %w", err)
	}
	return nil
}
