// internal/pages/checkout.go
package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
)

// Checkout locators, spread over the information, overview and complete steps.
var (
	FirstNameField      = browser.ID("first-name")
	LastNameField       = browser.ID("last-name")
	PostalCodeField     = browser.ID("postal-code")
	ContinueButton      = browser.ID("continue")
	FinishButton        = browser.ID("finish")
	SubtotalLabel       = browser.Class("summary_subtotal_label")
	OrderCompleteHeader = browser.Class("complete-header")
	CheckoutError       = browser.CSS("[data-test='error']")
)

// CheckoutPage drives the three checkout steps.
type CheckoutPage struct {
	Base
}

func NewCheckoutPage(p browser.Page, s Settings, logger *zap.Logger) *CheckoutPage {
	return &CheckoutPage{Base: newBase(p, s, logger, "checkout")}
}

// FillInformation completes the buyer form and continues to the overview.
func (c *CheckoutPage) FillInformation(ctx context.Context, first, last, postal string) error {
	for _, f := range []struct {
		loc   browser.Locator
		value string
	}{
		{FirstNameField, first},
		{LastNameField, last},
		{PostalCodeField, postal},
	} {
		if err := c.Fill(ctx, f.loc, f.value); err != nil {
			return err
		}
	}
	if err := c.Click(ctx, ContinueButton); err != nil {
		return err
	}
	return c.Settle(ctx)
}

// ErrorMessage returns the form error, or "" when the form was accepted.
func (c *CheckoutPage) ErrorMessage(ctx context.Context) (string, error) {
	ok, err := c.IsVisibleWithin(ctx, CheckoutError, c.settings.WaitTimeout/5)
	if err != nil || !ok {
		return "", err
	}
	return c.Text(ctx, CheckoutError)
}

// Subtotal parses the "Item total: $x" label on the overview.
func (c *CheckoutPage) Subtotal(ctx context.Context) (float64, error) {
	text, err := c.Text(ctx, SubtotalLabel)
	if err != nil {
		return 0, err
	}
	_, amount, ok := strings.Cut(text, "$")
	if !ok {
		return 0, fmt.Errorf("unexpected subtotal label %q", text)
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, fmt.Errorf("parse subtotal %q: %w", text, err)
	}
	return v, nil
}

func (c *CheckoutPage) Finish(ctx context.Context) error {
	if err := c.Click(ctx, FinishButton); err != nil {
		return err
	}
	return c.Settle(ctx)
}

// CompleteHeader returns the confirmation headline.
func (c *CheckoutPage) CompleteHeader(ctx context.Context) (string, error) {
	return c.Text(ctx, OrderCompleteHeader)
}
