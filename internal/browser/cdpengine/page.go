// internal/browser/cdpengine/page.go
package cdpengine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

const pollInterval = 100 * time.Millisecond

// Page drives one chromedp tab.
type Page struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	cfg       config.BrowserConfig
	logger    *zap.Logger
	closed    atomic.Bool
}

var (
	_ browser.Page            = (*Page)(nil)
	_ browser.FullPager       = (*Page)(nil)
	_ browser.ElementCapturer = (*Page)(nil)
)

// query maps a locator to a chromedp selector plus query option.
func query(loc browser.Locator) (string, chromedp.QueryOption, error) {
	if loc.By == browser.ByXPath {
		return loc.Value, chromedp.BySearch, nil
	}
	if css, ok := loc.CSSSelector(); ok {
		return css, chromedp.ByQuery, nil
	}
	return "", nil, fmt.Errorf("%s: %w", loc, browser.ErrUnsupportedLocator)
}

// jsNodes returns a JS expression evaluating to an array of the nodes matching loc.
func jsNodes(loc browser.Locator) (string, error) {
	if loc.By == browser.ByXPath {
		lit, err := jsoniter.MarshalToString(loc.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`(() => { const r = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null); const out = []; for (let i = 0; i < r.snapshotLength; i++) out.push(r.snapshotItem(i)); return out; })()`, lit), nil
	}
	css, ok := loc.CSSSelector()
	if !ok {
		return "", fmt.Errorf("%s: %w", loc, browser.ErrUnsupportedLocator)
	}
	lit, err := jsoniter.MarshalToString(css)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s))`, lit), nil
}

// stateScript returns an expression that is true once the first match of loc is in state.
func stateScript(loc browser.Locator, state browser.WaitState) (string, error) {
	nodes, err := jsNodes(loc)
	if err != nil {
		return "", err
	}
	const visible = `(el) => { if (!el) return false; const s = getComputedStyle(el); return s.visibility !== 'hidden' && s.display !== 'none' && el.getClientRects().length > 0; }`
	switch state {
	case browser.StateAttached:
		return fmt.Sprintf(`%s.length > 0`, nodes), nil
	case browser.StateHidden:
		return fmt.Sprintf(`!(%s)(%s[0])`, visible, nodes), nil
	default:
		return fmt.Sprintf(`(%s)(%s[0])`, visible, nodes), nil
	}
}

// run executes actions on the tab, bounded by both the caller's ctx and timeout.
func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if p.closed.Load() {
		return browser.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	opCtx, cancel := browser.ActionContext(p.tabCtx, ctx, timeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, p.cfg.PageLoadTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	var u string
	err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Location(&u))
	return u, err
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var t string
	err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Title(&t))
	return t, err
}

func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	sel, by, err := query(loc)
	if err != nil {
		return err
	}
	if err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Click(sel, by, chromedp.NodeVisible)); err != nil {
		return p.actionErr("click", loc, err)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, loc browser.Locator, value string) error {
	sel, by, err := query(loc)
	if err != nil {
		return err
	}
	err = p.run(ctx, p.cfg.ImplicitWait,
		chromedp.WaitVisible(sel, by),
		chromedp.Clear(sel, by),
		chromedp.SendKeys(sel, value, by),
	)
	if err != nil {
		return p.actionErr("fill", loc, err)
	}
	return nil
}

func (p *Page) Text(ctx context.Context, loc browser.Locator) (string, error) {
	sel, by, err := query(loc)
	if err != nil {
		return "", err
	}
	var text string
	if err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Text(sel, &text, by, chromedp.NodeVisible)); err != nil {
		return "", p.actionErr("read text of", loc, err)
	}
	return text, nil
}

func (p *Page) AllText(ctx context.Context, loc browser.Locator) ([]string, error) {
	nodes, err := jsNodes(loc)
	if err != nil {
		return nil, err
	}
	var texts []string
	expr := fmt.Sprintf(`%s.map(el => el.innerText)`, nodes)
	if err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Evaluate(expr, &texts)); err != nil {
		return nil, fmt.Errorf("read texts of %s: %w", loc, err)
	}
	return texts, nil
}

func (p *Page) Count(ctx context.Context, loc browser.Locator) (int, error) {
	nodes, err := jsNodes(loc)
	if err != nil {
		return 0, err
	}
	var n int
	if err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Evaluate(nodes+".length", &n)); err != nil {
		return 0, fmt.Errorf("count %s: %w", loc, err)
	}
	return n, nil
}

// SelectOption sets the value through the native setter so React sees the change event.
func (p *Page) SelectOption(ctx context.Context, loc browser.Locator, value string) error {
	nodes, err := jsNodes(loc)
	if err != nil {
		return err
	}
	lit, err := jsoniter.MarshalToString(value)
	if err != nil {
		return err
	}
	expr := fmt.Sprintf(`(() => {
		const el = %s[0];
		if (!el) return false;
		const setter = Object.getOwnPropertyDescriptor(HTMLSelectElement.prototype, 'value').set;
		setter.call(el, %s);
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return el.value === %s;
	})()`, nodes, lit, lit)

	var ok bool
	if err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("select %q in %s: %w", value, loc, err)
	}
	if !ok {
		return fmt.Errorf("select %q in %s: %w", value, loc, browser.ErrElementNotFound)
	}
	return nil
}

func (p *Page) WaitFor(ctx context.Context, loc browser.Locator, state browser.WaitState, timeout time.Duration) (bool, error) {
	expr, err := stateScript(loc, state)
	if err != nil {
		return false, err
	}
	var reached bool
	// The outer timeout leaves headroom so chromedp's own polling timeout fires first.
	err = p.run(ctx, timeout+time.Second, chromedp.Poll(expr, &reached,
		chromedp.WithPollingTimeout(timeout),
		chromedp.WithPollingInterval(pollInterval),
	))
	switch {
	case err == nil:
		return reached, nil
	case errors.Is(err, chromedp.ErrPollingTimeout):
		return false, nil
	default:
		return false, fmt.Errorf("wait for %s to be %s: %w", loc, state, err)
	}
}

// Screenshot captures the viewport as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, p.cfg.ImplicitWait, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

// FullPageScreenshot captures the whole scrollable page as PNG.
func (p *Page) FullPageScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	// Quality 100 makes chromedp emit PNG.
	if err := p.run(ctx, p.cfg.PageLoadTimeout, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("capture full page: %w", err)
	}
	return buf, nil
}

func (p *Page) ElementScreenshot(ctx context.Context, loc browser.Locator) ([]byte, error) {
	sel, by, err := query(loc)
	if err != nil {
		return nil, err
	}
	var buf []byte
	if err := p.run(ctx, p.cfg.ImplicitWait, chromedp.Screenshot(sel, &buf, by, chromedp.NodeVisible)); err != nil {
		return nil, p.actionErr("capture", loc, err)
	}
	return buf, nil
}

// Close shuts the tab's browser down. Calling it twice is a no-op.
func (p *Page) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	defer p.tabCancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(p.tabCtx) }()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Debug("chromedp cancel returned an error.", zap.Error(err))
			return fmt.Errorf("close tab: %w", err)
		}
		return nil
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("close tab: timed out after %s", shutdownTimeout)
	}
}

func (p *Page) actionErr(verb string, loc browser.Locator, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w: %v", verb, loc, browser.ErrElementNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", verb, loc, err)
}
