// internal/browser/cdpengine/page_test.go
package cdpengine

import (
	"context"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

func TestQuery(t *testing.T) {
	sel, _, err := query(browser.ID("login-button"))
	require.NoError(t, err)
	assert.Equal(t, "#login-button", sel)

	sel, _, err = query(browser.XPath("//button[text()='Login']"))
	require.NoError(t, err)
	assert.Equal(t, "//button[text()='Login']", sel)

	_, _, err = query(browser.Locator{By: "accessibility", Value: "x"})
	assert.ErrorIs(t, err, browser.ErrUnsupportedLocator)
}

func TestJSNodesQuotesSelectors(t *testing.T) {
	expr, err := jsNodes(browser.CSS(`[data-test='error']`))
	require.NoError(t, err)
	assert.Equal(t, `Array.from(document.querySelectorAll("[data-test='error']"))`, expr)

	expr, err = jsNodes(browser.XPath(`//div[@class="cart"]`))
	require.NoError(t, err)
	assert.Contains(t, expr, `document.evaluate("//div[@class=\"cart\"]"`)
}

func TestStateScript(t *testing.T) {
	attached, err := stateScript(browser.CSS(".cart_item"), browser.StateAttached)
	require.NoError(t, err)
	assert.Contains(t, attached, ".length > 0")

	visible, err := stateScript(browser.CSS(".cart_item"), browser.StateVisible)
	require.NoError(t, err)
	hidden, err := stateScript(browser.CSS(".cart_item"), browser.StateHidden)
	require.NoError(t, err)
	assert.Equal(t, "!"+visible, hidden, "hidden is the negation of visible")
}

func TestAllocatorOptions(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser()
	base := len(AllocatorOptions(cfg))

	cfg.BinaryPath = "/usr/bin/chromium"
	cfg.IgnoreTLSErrors = true
	cfg.Args = append(cfg.Args, "--lang=en-US")
	assert.Len(t, AllocatorOptions(cfg), base+3)

	cfg.Headless = false
	assert.Len(t, AllocatorOptions(cfg), base+2)
}

func TestClosedPageShortCircuits(t *testing.T) {
	p := &Page{tabCtx: context.Background(), tabCancel: func() {}}
	p.closed.Store(true)

	err := p.run(context.Background(), 0, chromedp.Navigate("about:blank"))
	assert.ErrorIs(t, err, browser.ErrSessionClosed)
	assert.NoError(t, p.Close(context.Background()))
}
