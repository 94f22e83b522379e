// internal/mocks/fakeshop.go
package mocks

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
)

// FakeShopURL is the base URL FakeShop answers to.
const FakeShopURL = "https://www.saucedemo.com"

type fakeProduct struct {
	id    int
	name  string
	price float64
}

// The six products of the demo catalogue, in the shop's default (A to Z) order.
var fakeCatalogue = []fakeProduct{
	{4, "Sauce Labs Backpack", 29.99},
	{0, "Sauce Labs Bike Light", 9.99},
	{1, "Sauce Labs Bolt T-Shirt", 15.99},
	{5, "Sauce Labs Fleece Jacket", 49.99},
	{2, "Sauce Labs Onesie", 7.99},
	{3, "Test.allTheThings() T-Shirt (Red)", 15.99},
}

type fakeElement struct {
	text    string
	visible bool
	click   func() error
	fill    func(string)
}

// FakeShop is an in-memory stand-in for the demo shop that implements
// browser.Page at the selector level. It understands the CSS selectors the
// page objects use; anything else matches nothing.
type FakeShop struct {
	mu sync.Mutex

	path       string
	username   string
	password   string
	loggedIn   bool
	errorMsg   string
	menuOpen   bool
	sortOrder  string
	cart       []int // catalogue indices in insertion order
	firstName  string
	lastName   string
	postalCode string
	closed     bool

	// ScreenshotErr, when set, is returned by every capture.
	ScreenshotErr error
	// CloseErr, when set, is returned by Close.
	CloseErr error
	// BrokenTitle makes Title return an error, simulating a dead session.
	BrokenTitle bool

	closeCalls int
	shots      int
}

// NewFakeShop returns a shop sitting on the login page.
func NewFakeShop() *FakeShop {
	return &FakeShop{path: "/", sortOrder: "az"}
}

var _ browser.Page = (*FakeShop)(nil)
var _ browser.FullPager = (*FakeShop)(nil)
var _ browser.ElementCapturer = (*FakeShop)(nil)

// CloseCalls reports how often Close was invoked.
func (f *FakeShop) CloseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

// Screenshots reports how many captures succeeded.
func (f *FakeShop) Screenshots() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shots
}

// CartSize reports the number of products in the cart.
func (f *FakeShop) CartSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cart)
}

func (f *FakeShop) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.closed {
		return browser.ErrSessionClosed
	}
	return nil
}

func (f *FakeShop) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx); err != nil {
		return err
	}
	if !strings.HasPrefix(url, FakeShopURL) {
		return fmt.Errorf("navigate %s: net::ERR_NAME_NOT_RESOLVED", url)
	}
	path := strings.TrimPrefix(url, FakeShopURL)
	if path == "" {
		path = "/"
	}
	f.menuOpen = false
	if path != "/" && !f.loggedIn {
		f.path = "/"
		f.errorMsg = fmt.Sprintf("Epic sadface: You can only access '%s' when you are logged in.", path)
		return nil
	}
	f.path = path
	return nil
}

func (f *FakeShop) CurrentURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx); err != nil {
		return "", err
	}
	if f.path == "/" {
		return FakeShopURL + "/", nil
	}
	return FakeShopURL + f.path, nil
}

func (f *FakeShop) Title(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx); err != nil {
		return "", err
	}
	if f.BrokenTitle {
		return "", fmt.Errorf("title: target crashed")
	}
	return "Swag Labs", nil
}

func (f *FakeShop) Click(ctx context.Context, loc browser.Locator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first(ctx, loc)
	if err != nil {
		return err
	}
	if !el.visible {
		return fmt.Errorf("click %s: element is not visible", loc)
	}
	if el.click == nil {
		return nil
	}
	return el.click()
}

func (f *FakeShop) Fill(ctx context.Context, loc browser.Locator, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first(ctx, loc)
	if err != nil {
		return err
	}
	if el.fill == nil {
		return fmt.Errorf("fill %s: element is not an input", loc)
	}
	el.fill(value)
	return nil
}

func (f *FakeShop) Text(ctx context.Context, loc browser.Locator) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first(ctx, loc)
	if err != nil {
		return "", err
	}
	return el.text, nil
}

func (f *FakeShop) AllText(ctx context.Context, loc browser.Locator) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx); err != nil {
		return nil, err
	}
	var out []string
	for _, el := range f.elements(loc) {
		out = append(out, el.text)
	}
	return out, nil
}

func (f *FakeShop) Count(ctx context.Context, loc browser.Locator) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx); err != nil {
		return 0, err
	}
	return len(f.elements(loc)), nil
}

func (f *FakeShop) SelectOption(ctx context.Context, loc browser.Locator, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.first(ctx, loc); err != nil {
		return err
	}
	switch value {
	case "az", "za", "lohi", "hilo":
		f.sortOrder = value
		return nil
	default:
		return fmt.Errorf("select %s: no option %q", loc, value)
	}
}

// WaitFor evaluates the condition once; the fake never changes state on its own.
func (f *FakeShop) WaitFor(ctx context.Context, loc browser.Locator, state browser.WaitState, timeout time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx); err != nil {
		return false, err
	}
	els := f.elements(loc)
	switch state {
	case browser.StateAttached:
		return len(els) > 0, nil
	case browser.StateHidden:
		return len(els) == 0 || !els[0].visible, nil
	default:
		return len(els) > 0 && els[0].visible, nil
	}
}

func (f *FakeShop) Screenshot(ctx context.Context) ([]byte, error) {
	return f.capture(ctx, 64, 48)
}

func (f *FakeShop) FullPageScreenshot(ctx context.Context) ([]byte, error) {
	return f.capture(ctx, 64, 160)
}

func (f *FakeShop) ElementScreenshot(ctx context.Context, loc browser.Locator) ([]byte, error) {
	f.mu.Lock()
	_, err := f.first(ctx, loc)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.capture(ctx, 16, 16)
}

func (f *FakeShop) capture(ctx context.Context, w, h int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(ctx); err != nil {
		return nil, err
	}
	if f.ScreenshotErr != nil {
		return nil, f.ScreenshotErr
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x13, G: 0x2c, B: 0x3a, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	f.shots++
	return buf.Bytes(), nil
}

func (f *FakeShop) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	f.closed = true
	return f.CloseErr
}

func (f *FakeShop) first(ctx context.Context, loc browser.Locator) (fakeElement, error) {
	if err := f.check(ctx); err != nil {
		return fakeElement{}, err
	}
	els := f.elements(loc)
	if len(els) == 0 {
		return fakeElement{}, fmt.Errorf("%s: %w", loc, browser.ErrElementNotFound)
	}
	return els[0], nil
}

func (f *FakeShop) displayOrder() []int {
	idx := make([]int, len(fakeCatalogue))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := fakeCatalogue[idx[a]], fakeCatalogue[idx[b]]
		switch f.sortOrder {
		case "za":
			return pa.name > pb.name
		case "lohi":
			return pa.price < pb.price
		case "hilo":
			return pa.price > pb.price
		default:
			return pa.name < pb.name
		}
	})
	return idx
}

func (f *FakeShop) inCart(i int) bool {
	for _, c := range f.cart {
		if c == i {
			return true
		}
	}
	return false
}

func (f *FakeShop) toggleCart(i int) {
	for n, c := range f.cart {
		if c == i {
			f.cart = append(f.cart[:n], f.cart[n+1:]...)
			return
		}
	}
	f.cart = append(f.cart, i)
}

func (f *FakeShop) visibleAt(paths ...string) bool {
	for _, p := range paths {
		if f.path == p {
			return true
		}
	}
	return false
}

// elements resolves a locator against the current page state.
func (f *FakeShop) elements(loc browser.Locator) []fakeElement {
	sel, ok := loc.CSSSelector()
	if !ok {
		return nil
	}
	sel = strings.ReplaceAll(sel, `"`, `'`)

	const (
		login     = "/"
		inventory = "/inventory.html"
		cart      = "/cart.html"
		stepOne   = "/checkout-step-one.html"
		stepTwo   = "/checkout-step-two.html"
		complete  = "/checkout-complete.html"
	)
	shopPages := []string{inventory, cart, stepOne, stepTwo, complete}
	one := func(text string, click func() error) []fakeElement {
		return []fakeElement{{text: text, visible: true, click: click}}
	}
	input := func(target *string) []fakeElement {
		return []fakeElement{{visible: true, fill: func(v string) { *target = v }}}
	}

	switch {
	case f.path == login:
		switch sel {
		case ".login_logo":
			return one("Swag Labs", nil)
		case "#user-name":
			return input(&f.username)
		case "#password":
			return input(&f.password)
		case "#login-button":
			return one("Login", f.submitLogin)
		case "[data-test='error']", "h3[data-test='error']":
			if f.errorMsg == "" {
				return nil
			}
			return one(f.errorMsg, nil)
		case ".error-button":
			if f.errorMsg == "" {
				return nil
			}
			return one("", func() error { f.errorMsg = ""; return nil })
		}
		return nil
	case !f.visibleAt(shopPages...):
		return nil
	}

	// Header and burger menu are shared by every authenticated page.
	switch sel {
	case ".app_logo":
		return one("Swag Labs", nil)
	case ".shopping_cart_link":
		return one("", func() error { f.path = cart; f.menuOpen = false; return nil })
	case ".shopping_cart_badge":
		if len(f.cart) == 0 {
			return nil
		}
		return one(fmt.Sprint(len(f.cart)), nil)
	case "#react-burger-menu-btn":
		return one("Open Menu", func() error { f.menuOpen = true; return nil })
	case "#logout_sidebar_link", "#inventory_sidebar_link", "#reset_sidebar_link":
		els := []fakeElement{{visible: f.menuOpen}}
		switch sel {
		case "#logout_sidebar_link":
			els[0].text = "Logout"
			els[0].click = f.logout
		case "#inventory_sidebar_link":
			els[0].text = "All Items"
			els[0].click = func() error { f.path = inventory; f.menuOpen = false; return nil }
		default:
			els[0].text = "Reset App State"
			els[0].click = func() error { f.cart = nil; return nil }
		}
		return els
	case "#react-burger-cross-btn":
		return []fakeElement{{text: "Close Menu", visible: f.menuOpen, click: func() error { f.menuOpen = false; return nil }}}
	}

	switch f.path {
	case inventory:
		return f.inventoryElements(sel)
	case cart:
		return f.cartElements(sel)
	case stepOne:
		switch sel {
		case ".title":
			return one("Checkout: Your Information", nil)
		case "#first-name":
			return input(&f.firstName)
		case "#last-name":
			return input(&f.lastName)
		case "#postal-code":
			return input(&f.postalCode)
		case "#continue":
			return one("Continue", f.submitCheckoutInfo)
		case "#cancel":
			return one("Cancel", func() error { f.path = cart; return nil })
		case "[data-test='error']", "h3[data-test='error']":
			if f.errorMsg == "" {
				return nil
			}
			return one(f.errorMsg, nil)
		}
	case stepTwo:
		switch sel {
		case ".title":
			return one("Checkout: Overview", nil)
		case ".cart_item":
			return f.cartRows(func(p fakeProduct) string { return p.name })
		case ".summary_subtotal_label":
			return one(fmt.Sprintf("Item total: $%.2f", f.subtotal()), nil)
		case "#finish":
			return one("Finish", func() error { f.cart = nil; f.path = complete; return nil })
		}
	case complete:
		switch sel {
		case ".title":
			return one("Checkout: Complete!", nil)
		case ".complete-header":
			return one("Thank you for your order!", nil)
		case "#back-to-products":
			return one("Back Home", func() error { f.path = inventory; return nil })
		}
	}
	return nil
}

func (f *FakeShop) inventoryElements(sel string) []fakeElement {
	order := f.displayOrder()
	switch sel {
	case ".title":
		return []fakeElement{{text: "Products", visible: true}}
	case ".inventory_container", ".inventory_list":
		return []fakeElement{{visible: true}}
	case ".product_sort_container":
		return []fakeElement{{text: f.sortOrder, visible: true}}
	case ".inventory_item":
		return f.rows(order, func(p fakeProduct) string { return p.name })
	case ".inventory_item_name":
		return f.rows(order, func(p fakeProduct) string { return p.name })
	case ".inventory_item_price":
		return f.rows(order, func(p fakeProduct) string { return fmt.Sprintf("$%.2f", p.price) })
	case ".btn_inventory":
		var els []fakeElement
		for _, i := range order {
			i := i
			text := "Add to cart"
			if f.inCart(i) {
				text = "Remove"
			}
			els = append(els, fakeElement{text: text, visible: true, click: func() error { f.toggleCart(i); return nil }})
		}
		return els
	case "[data-test^='remove-']", "button[data-test^='remove-']":
		var els []fakeElement
		for _, i := range order {
			i := i
			if f.inCart(i) {
				els = append(els, fakeElement{text: "Remove", visible: true, click: func() error { f.toggleCart(i); return nil }})
			}
		}
		return els
	case "[data-test^='add-to-cart-']", "button[data-test^='add-to-cart-']":
		var els []fakeElement
		for _, i := range order {
			i := i
			if !f.inCart(i) {
				els = append(els, fakeElement{text: "Add to cart", visible: true, click: func() error { f.toggleCart(i); return nil }})
			}
		}
		return els
	}
	return nil
}

func (f *FakeShop) cartElements(sel string) []fakeElement {
	switch sel {
	case ".title":
		return []fakeElement{{text: "Your Cart", visible: true}}
	case ".cart_contents_container", ".cart_list":
		return []fakeElement{{visible: true}}
	case ".cart_item":
		return f.cartRows(func(p fakeProduct) string { return p.name })
	case ".inventory_item_name":
		return f.cartRows(func(p fakeProduct) string { return p.name })
	case ".cart_quantity":
		return f.cartRows(func(fakeProduct) string { return "1" })
	case "[data-test^='remove-']", "button[data-test^='remove-']", ".cart_button":
		var els []fakeElement
		for _, i := range f.cart {
			i := i
			els = append(els, fakeElement{text: "Remove", visible: true, click: func() error { f.toggleCart(i); return nil }})
		}
		return els
	case "#continue-shopping":
		return []fakeElement{{text: "Continue Shopping", visible: true, click: func() error { f.path = "/inventory.html"; return nil }}}
	case "#checkout":
		return []fakeElement{{text: "Checkout", visible: true, click: func() error {
			f.path = "/checkout-step-one.html"
			f.errorMsg = ""
			return nil
		}}}
	}
	return nil
}

func (f *FakeShop) rows(order []int, text func(fakeProduct) string) []fakeElement {
	els := make([]fakeElement, 0, len(order))
	for _, i := range order {
		els = append(els, fakeElement{text: text(fakeCatalogue[i]), visible: true})
	}
	return els
}

func (f *FakeShop) cartRows(text func(fakeProduct) string) []fakeElement {
	return f.rows(f.cart, text)
}

func (f *FakeShop) subtotal() float64 {
	var total float64
	for _, i := range f.cart {
		total += fakeCatalogue[i].price
	}
	return total
}

func (f *FakeShop) submitLogin() error {
	switch {
	case f.username == "":
		f.errorMsg = "Epic sadface: Username is required"
	case f.password == "":
		f.errorMsg = "Epic sadface: Password is required"
	case f.username == "locked_out_user" && f.password == "secret_sauce":
		f.errorMsg = "Epic sadface: Sorry, this user has been locked out."
	case f.username == "standard_user" && f.password == "secret_sauce":
		f.errorMsg = ""
		f.loggedIn = true
		f.path = "/inventory.html"
	default:
		f.errorMsg = "Epic sadface: Username and password do not match any user in this service"
	}
	return nil
}

func (f *FakeShop) submitCheckoutInfo() error {
	switch {
	case f.firstName == "":
		f.errorMsg = "Error: First Name is required"
	case f.lastName == "":
		f.errorMsg = "Error: Last Name is required"
	case f.postalCode == "":
		f.errorMsg = "Error: Postal Code is required"
	default:
		f.errorMsg = ""
		f.path = "/checkout-step-two.html"
	}
	return nil
}

func (f *FakeShop) logout() error {
	f.loggedIn = false
	f.menuOpen = false
	f.username, f.password = "", ""
	f.path = "/"
	return nil
}
