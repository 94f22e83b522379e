// internal/browser/wdengine/page_test.go
package wdengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

func TestBy(t *testing.T) {
	tests := []struct {
		loc       browser.Locator
		wantBy    string
		wantValue string
	}{
		{browser.CSS(".inventory_item"), selenium.ByCSSSelector, ".inventory_item"},
		{browser.ID("checkout"), selenium.ByID, "checkout"},
		{browser.Class("shopping_cart_link"), selenium.ByClassName, "shopping_cart_link"},
		{browser.XPath("//a[contains(@class,'cart')]"), selenium.ByXPATH, "//a[contains(@class,'cart')]"},
		{browser.Name("user-name"), selenium.ByName, "user-name"},
	}
	for _, tt := range tests {
		by, value, err := By(tt.loc)
		require.NoError(t, err)
		assert.Equal(t, tt.wantBy, by)
		assert.Equal(t, tt.wantValue, value)
	}

	_, _, err := By(browser.Locator{By: "shadow", Value: "x"})
	assert.ErrorIs(t, err, browser.ErrUnsupportedLocator)
}

func TestIsNoSuchElement(t *testing.T) {
	assert.True(t, isNoSuchElement(&selenium.Error{Err: "no such element"}))
	assert.True(t, isNoSuchElement(&selenium.Error{Err: "stale element reference"}))
	assert.False(t, isNoSuchElement(&selenium.Error{Err: "invalid session id"}))
	assert.True(t, isNoSuchElement(errors.New("unknown error: no such element: Unable to locate element")))
	assert.False(t, isNoSuchElement(nil))
}

func TestPoll(t *testing.T) {
	t.Run("succeeds once condition holds", func(t *testing.T) {
		calls := 0
		ok, err := poll(context.Background(), time.Second, func() (bool, error) {
			calls++
			return calls >= 3, nil
		})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, calls)
	})

	t.Run("timeout is not an error", func(t *testing.T) {
		ok, err := poll(context.Background(), 150*time.Millisecond, func() (bool, error) { return false, nil })
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("condition error surfaces", func(t *testing.T) {
		boom := errors.New("session deleted")
		_, err := poll(context.Background(), time.Second, func() (bool, error) { return false, boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("context cancellation surfaces", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := poll(ctx, time.Second, func() (bool, error) { return false, nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCapabilities(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser()
	cfg.BinaryPath = "/usr/bin/chromium"

	caps := Capabilities(cfg)
	assert.Equal(t, "chrome", caps["browserName"])

	raw, ok := caps["goog:chromeOptions"]
	require.True(t, ok, "chrome options should be attached")
	assert.NotNil(t, raw)
}

func TestClosedPage(t *testing.T) {
	p := &Page{}
	p.closed.Store(true)

	_, err := p.Count(context.Background(), browser.CSS(".cart_item"))
	assert.ErrorIs(t, err, browser.ErrSessionClosed)
	assert.NoError(t, p.Close(context.Background()))
}
