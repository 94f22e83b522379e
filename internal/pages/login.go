// internal/pages/login.go
package pages

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
)

// Login page locators.
var (
	LoginLogo     = browser.Class("login_logo")
	UsernameField = browser.ID("user-name")
	PasswordField = browser.ID("password")
	LoginButton   = browser.ID("login-button")
	LoginError    = browser.CSS("[data-test='error']")
	LoginErrorX   = browser.Class("error-button")
)

// LoginPage is the shop's landing page.
type LoginPage struct {
	Base
}

func NewLoginPage(p browser.Page, s Settings, logger *zap.Logger) *LoginPage {
	return &LoginPage{Base: newBase(p, s, logger, "login")}
}

// Open loads the login page.
func (l *LoginPage) Open(ctx context.Context) error {
	return l.Base.Open(ctx, "")
}

// Login fills both fields and submits. It does not judge the outcome.
func (l *LoginPage) Login(ctx context.Context, username, password string) error {
	if err := l.Fill(ctx, UsernameField, username); err != nil {
		return err
	}
	if err := l.Fill(ctx, PasswordField, password); err != nil {
		return err
	}
	if err := l.Click(ctx, LoginButton); err != nil {
		return err
	}
	l.logger.Debug("Credentials submitted.", zap.String("username", username))
	return l.Settle(ctx)
}

// IsLoginPageDisplayed reports whether the login form is on screen.
func (l *LoginPage) IsLoginPageDisplayed(ctx context.Context) bool {
	return l.displayed(ctx, LoginButton)
}

// VerifySwagLabsPresent checks the logo is visible and carries the shop name.
func (l *LoginPage) VerifySwagLabsPresent(ctx context.Context) (bool, error) {
	ok, err := l.IsVisible(ctx, LoginLogo)
	if err != nil || !ok {
		return false, err
	}
	text, err := l.Text(ctx, LoginLogo)
	if err != nil {
		return false, err
	}
	return strings.Contains(text, "Swag Labs"), nil
}

// IsLoginSuccessful reports whether the browser landed on the inventory.
func (l *LoginPage) IsLoginSuccessful(ctx context.Context) bool {
	return l.urlContains(ctx, "inventory")
}

// IsErrorDisplayed reports whether the login error banner is visible.
func (l *LoginPage) IsErrorDisplayed(ctx context.Context) bool {
	return l.displayed(ctx, LoginError)
}

// ErrorMessage returns the banner text, or "" when there is none.
func (l *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	ok, err := l.IsVisible(ctx, LoginError)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return l.Text(ctx, LoginError)
}

// CloseError dismisses the error banner and confirms it went away.
func (l *LoginPage) CloseError(ctx context.Context) error {
	if err := l.Click(ctx, LoginErrorX); err != nil {
		return err
	}
	hidden, err := l.IsHidden(ctx, LoginError)
	if err != nil {
		return err
	}
	if !hidden {
		return fmt.Errorf("error banner still visible after closing")
	}
	return nil
}
