// internal/pages/cart.go
package pages

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
)

// Cart page locators.
var (
	CartContainer          = browser.Class("cart_contents_container")
	CartItem               = browser.Class("cart_item")
	CartItemName           = browser.Class("inventory_item_name")
	CartRemoveButton       = browser.CSS("[data-test^='remove-']")
	ContinueShoppingButton = browser.ID("continue-shopping")
	CheckoutButton         = browser.ID("checkout")
)

// CartPage lists what the user is about to buy.
type CartPage struct {
	Base
}

func NewCartPage(p browser.Page, s Settings, logger *zap.Logger) *CartPage {
	return &CartPage{Base: newBase(p, s, logger, "cart")}
}

func (c *CartPage) IsDisplayed(ctx context.Context) bool {
	return c.displayed(ctx, CartContainer)
}

func (c *CartPage) ItemCount(ctx context.Context) (int, error) {
	return c.Count(ctx, CartItem)
}

func (c *CartPage) ItemNames(ctx context.Context) ([]string, error) {
	names, err := c.page.AllText(ctx, CartItemName)
	if err != nil {
		return nil, fmt.Errorf("cart item names: %w", err)
	}
	return names, nil
}

// ContainsItem reports whether a cart row's name contains name.
func (c *CartPage) ContainsItem(ctx context.Context, name string) (bool, error) {
	ok, err := c.IsVisible(ctx, CartItem)
	if err != nil || !ok {
		return false, err
	}
	names, err := c.ItemNames(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if strings.Contains(n, name) {
			return true, nil
		}
	}
	return false, nil
}

// RemoveFirstItem removes the first row when there is one.
func (c *CartPage) RemoveFirstItem(ctx context.Context) error {
	ok, err := c.IsVisible(ctx, CartRemoveButton)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Debug("Cart already empty.")
		return nil
	}
	if err := c.Click(ctx, CartRemoveButton); err != nil {
		return err
	}
	return c.Settle(ctx)
}

func (c *CartPage) IsEmpty(ctx context.Context) (bool, error) {
	n, err := c.ItemCount(ctx)
	return n == 0, err
}

func (c *CartPage) ContinueShopping(ctx context.Context) error {
	if err := c.Click(ctx, ContinueShoppingButton); err != nil {
		return err
	}
	return c.Settle(ctx)
}

func (c *CartPage) Checkout(ctx context.Context) error {
	if err := c.Click(ctx, CheckoutButton); err != nil {
		return err
	}
	return c.Settle(ctx)
}
