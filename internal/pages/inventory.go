// internal/pages/inventory.go
package pages

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
)

// Inventory page locators.
var (
	InventoryContainer = browser.Class("inventory_container")
	InventoryItem      = browser.Class("inventory_item")
	ItemName           = browser.Class("inventory_item_name")
	ItemPrice          = browser.Class("inventory_item_price")
	AddToCartButton    = browser.CSS("[data-test^='add-to-cart-']")
	RemoveButton       = browser.CSS("[data-test^='remove-']")
	CartBadge          = browser.Class("shopping_cart_badge")
	MenuButton         = browser.ID("react-burger-menu-btn")
	LogoutLink         = browser.ID("logout_sidebar_link")
	SortDropdown       = browser.Class("product_sort_container")
)

// CartLinks are tried in order until one of them reaches the cart.
var CartLinks = []browser.Locator{
	browser.Class("shopping_cart_link"),
	browser.ID("shopping_cart_container"),
	browser.XPath("//a[@class='shopping_cart_link']"),
	browser.XPath("//div[@id='shopping_cart_container']"),
}

// SortOption is a value of the product sort dropdown.
type SortOption string

const (
	SortNameAsc   SortOption = "az"
	SortNameDesc  SortOption = "za"
	SortPriceAsc  SortOption = "lohi"
	SortPriceDesc SortOption = "hilo"
)

// ErrCartUnreachable is returned when no cart link led to the cart page.
var ErrCartUnreachable = errors.New("could not open the cart")

// InventoryPage is the product listing shown after login.
type InventoryPage struct {
	Base
}

func NewInventoryPage(p browser.Page, s Settings, logger *zap.Logger) *InventoryPage {
	return &InventoryPage{Base: newBase(p, s, logger, "inventory")}
}

func (i *InventoryPage) IsDisplayed(ctx context.Context) bool {
	return i.displayed(ctx, InventoryContainer)
}

func (i *InventoryPage) ProductCount(ctx context.Context) (int, error) {
	if err := i.waitVisible(ctx, InventoryItem); err != nil {
		return 0, err
	}
	return i.Count(ctx, InventoryItem)
}

// ProductNames lists names in display order.
func (i *InventoryPage) ProductNames(ctx context.Context) ([]string, error) {
	names, err := i.page.AllText(ctx, ItemName)
	if err != nil {
		return nil, fmt.Errorf("product names: %w", err)
	}
	for n := range names {
		names[n] = strings.TrimSpace(names[n])
	}
	return names, nil
}

// ProductPrices lists prices in display order.
func (i *InventoryPage) ProductPrices(ctx context.Context) ([]float64, error) {
	raw, err := i.page.AllText(ctx, ItemPrice)
	if err != nil {
		return nil, fmt.Errorf("product prices: %w", err)
	}
	prices := make([]float64, 0, len(raw))
	for _, s := range raw {
		p, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "$"), 64)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", s, err)
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// AddFirstItemToCart adds the first listed product and returns its name.
func (i *InventoryPage) AddFirstItemToCart(ctx context.Context) (string, error) {
	name, err := i.Text(ctx, ItemName)
	if err != nil {
		return "", err
	}
	if err := i.Click(ctx, AddToCartButton); err != nil {
		return "", err
	}
	i.logger.Debug("Item added to cart.", zap.String("item", name))
	return name, i.Settle(ctx)
}

// RemoveFirstItemFromCart clicks the first Remove button on the listing.
func (i *InventoryPage) RemoveFirstItemFromCart(ctx context.Context) error {
	if err := i.Click(ctx, RemoveButton); err != nil {
		return err
	}
	return i.Settle(ctx)
}

// CartBadgeCount returns the badge text, "0" when the badge is absent.
func (i *InventoryPage) CartBadgeCount(ctx context.Context) (string, error) {
	ok, err := i.IsVisible(ctx, CartBadge)
	if err != nil {
		return "", err
	}
	if !ok {
		return "0", nil
	}
	return i.Text(ctx, CartBadge)
}

// VerifyItemAddedToCart reports whether the badge shows exactly one item.
func (i *InventoryPage) VerifyItemAddedToCart(ctx context.Context) bool {
	n, err := i.CartBadgeCount(ctx)
	if err != nil {
		i.logger.Warn("Cannot read cart badge.", zap.Error(err))
		return false
	}
	return n == "1"
}

func (i *InventoryPage) IsRemoveButtonVisible(ctx context.Context) bool {
	return i.displayed(ctx, RemoveButton)
}

// OpenCart clicks through CartLinks until the cart page loads.
func (i *InventoryPage) OpenCart(ctx context.Context) error {
	var errs []error
	for _, loc := range CartLinks {
		if err := i.Click(ctx, loc); err != nil {
			i.logger.Debug("Cart link did not work, trying next.", zap.Stringer("locator", loc), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if err := i.Settle(ctx); err != nil {
			return err
		}
		if i.urlContains(ctx, "cart") {
			return nil
		}
		errs = append(errs, fmt.Errorf("clicked %s but the cart page did not load", loc))
	}
	if len(errs) == 0 {
		return ErrCartUnreachable
	}
	return fmt.Errorf("%w: %w", ErrCartUnreachable, errors.Join(errs...))
}

func (i *InventoryPage) OpenMenu(ctx context.Context) error {
	if err := i.Click(ctx, MenuButton); err != nil {
		return err
	}
	return i.Settle(ctx)
}

// Logout opens the burger menu and clicks Logout.
func (i *InventoryPage) Logout(ctx context.Context) error {
	if err := i.OpenMenu(ctx); err != nil {
		return err
	}
	if err := i.Click(ctx, LogoutLink); err != nil {
		return err
	}
	return i.Settle(ctx)
}

// VerifyLogoutSuccessful reports whether the browser is back on the shop
// but off the inventory.
func (i *InventoryPage) VerifyLogoutSuccessful(ctx context.Context) bool {
	u, err := i.CurrentURL(ctx)
	if err != nil {
		i.logger.Warn("Cannot read current URL.", zap.Error(err))
		return false
	}
	host := strings.TrimPrefix(strings.TrimPrefix(i.settings.BaseURL, "https://"), "http://")
	return strings.Contains(u, host) && !strings.Contains(u, "inventory")
}

// SortBy picks a sort order from the dropdown.
func (i *InventoryPage) SortBy(ctx context.Context, opt SortOption) error {
	if err := i.waitVisible(ctx, SortDropdown); err != nil {
		return err
	}
	if err := i.page.SelectOption(ctx, SortDropdown, string(opt)); err != nil {
		return fmt.Errorf("sort by %s: %w", opt, err)
	}
	return i.Settle(ctx)
}
