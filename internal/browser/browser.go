// internal/browser/browser.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrSessionClosed is returned by any Page method called after Close.
	ErrSessionClosed = errors.New("browser session is closed")
	// ErrUnsupportedLocator is returned when an engine cannot express a locator strategy.
	ErrUnsupportedLocator = errors.New("locator strategy not supported by engine")
	// ErrElementNotFound is returned by actions whose target never appeared.
	ErrElementNotFound = errors.New("element not found")
	// ErrUnsupported is returned for optional capabilities an engine lacks.
	ErrUnsupported = errors.New("operation not supported by engine")
)

// Strategy names how a Locator's value is interpreted.
type Strategy string

const (
	ByCSS       Strategy = "css"
	ByID        Strategy = "id"
	ByClassName Strategy = "class"
	ByXPath     Strategy = "xpath"
	ByName      Strategy = "name"
)

// Locator is an engine-neutral element query. Actions always target the
// first matching element.
type Locator struct {
	By    Strategy
	Value string
}

func CSS(selector string) Locator { return Locator{By: ByCSS, Value: selector} }
func ID(id string) Locator        { return Locator{By: ByID, Value: id} }
func Class(name string) Locator   { return Locator{By: ByClassName, Value: name} }
func XPath(expr string) Locator   { return Locator{By: ByXPath, Value: expr} }
func Name(name string) Locator    { return Locator{By: ByName, Value: name} }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}

// CSSSelector renders the locator as a CSS selector. XPath locators have no
// CSS form and report false.
func (l Locator) CSSSelector() (string, bool) {
	switch l.By {
	case ByCSS, "":
		return l.Value, true
	case ByID:
		return "#" + cssEscapeIdent(l.Value), true
	case ByClassName:
		return "." + cssEscapeIdent(l.Value), true
	case ByName:
		return fmt.Sprintf(`[name=%q]`, l.Value), true
	default:
		return "", false
	}
}

// cssEscapeIdent escapes the characters saucedemo ids actually contain.
func cssEscapeIdent(s string) string {
	r := strings.NewReplacer(".", `\.`, ":", `\:`, "[", `\[`, "]", `\]`, " ", `\ `)
	return r.Replace(s)
}

// WaitState is the element condition a bounded wait polls for.
type WaitState string

const (
	StateVisible  WaitState = "visible"
	StateHidden   WaitState = "hidden"
	StateAttached WaitState = "attached"
)

// Page is a single live browser session. Implementations are not safe for
// concurrent use; one test drives one Page.
type Page interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)

	Click(ctx context.Context, loc Locator) error
	Fill(ctx context.Context, loc Locator, value string) error
	Text(ctx context.Context, loc Locator) (string, error)
	// AllText returns the text of every match in document order.
	AllText(ctx context.Context, loc Locator) ([]string, error)
	Count(ctx context.Context, loc Locator) (int, error)
	SelectOption(ctx context.Context, loc Locator, value string) error

	// WaitFor polls until loc reaches state or timeout elapses. A timeout is
	// reported as (false, nil); only session failures return an error.
	WaitFor(ctx context.Context, loc Locator, state WaitState, timeout time.Duration) (bool, error)

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

// FullPager is implemented by pages that can capture beyond the viewport.
type FullPager interface {
	FullPageScreenshot(ctx context.Context) ([]byte, error)
}

// ElementCapturer is implemented by pages that can capture a single element.
type ElementCapturer interface {
	ElementScreenshot(ctx context.Context, loc Locator) ([]byte, error)
}

// Launcher owns the browser process (or driver) and opens isolated pages on it.
type Launcher interface {
	// Name is the engine name, e.g. "playwright".
	Name() string
	NewPage(ctx context.Context) (Page, error)
	Shutdown(ctx context.Context) error
}
