// internal/suites/cases.go
package suites

import (
	"sort"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/harness"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/pages"
)

const catalogueSize = 6

// shop bundles the page objects a case works with.
type shop struct {
	t         *harness.T
	login     *pages.LoginPage
	inventory *pages.InventoryPage
	cart      *pages.CartPage
	checkout  *pages.CheckoutPage
}

func openShop(t *harness.T) *shop {
	p, s, l := t.Page(), t.Settings(), t.Logger()
	sh := &shop{
		t:         t,
		login:     pages.NewLoginPage(p, s, l),
		inventory: pages.NewInventoryPage(p, s, l),
		cart:      pages.NewCartPage(p, s, l),
		checkout:  pages.NewCheckoutPage(p, s, l),
	}
	t.Step("Open the shop", func() {
		t.Time("navigate_login", func() {
			require.NoError(t, sh.login.Open(t.Context()))
		})
	})
	return sh
}

func (s *shop) submit(username, password string) {
	s.t.Step("Submit credentials for "+username, func() {
		require.NoError(s.t, s.login.Login(s.t.Context(), username, password))
	})
}

// loginStandard logs in with the standard account and requires the inventory.
func (s *shop) loginStandard() {
	creds := s.t.Target().Credentials
	s.t.Time("login", func() {
		s.submit(creds.StandardUser, creds.Password)
	})
	require.True(s.t, s.inventory.IsDisplayed(s.t.Context()), "inventory should be displayed after login")
}

func (s *shop) addFirstItem() string {
	var name string
	s.t.Step("Add the first product to the cart", func() {
		var err error
		name, err = s.inventory.AddFirstItemToCart(s.t.Context())
		require.NoError(s.t, err)
	})
	return name
}

func (s *shop) openCart() {
	s.t.Step("Open the cart", func() {
		require.NoError(s.t, s.inventory.OpenCart(s.t.Context()))
	})
}

func smoke(feature string) []string      { return []string{TagSmoke, feature} }
func regression(feature string) []string { return []string{TagRegression, feature} }

func loginCases() []harness.Case {
	return []harness.Case{
		{
			Name:        "test_verify_website_title",
			Description: "Verify website title is correct",
			Feature:     FeatureLogin,
			Tags:        smoke(FeatureLogin),
			Run: func(t *harness.T) {
				s := openShop(t)
				assert.True(t, s.login.IsLoginPageDisplayed(t.Context()), "login page should be displayed")
				title, err := s.login.Title(t.Context())
				require.NoError(t, err)
				assert.Contains(t, title, t.Target().Title)
				ok, err := s.login.VerifySwagLabsPresent(t.Context())
				require.NoError(t, err)
				assert.True(t, ok, "logo should read Swag Labs")
			},
		},
		{
			Name:        "test_login_with_valid_credentials",
			Description: "Test login with valid credentials",
			Feature:     FeatureLogin,
			Tags:        smoke(FeatureLogin),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				u, err := s.login.CurrentURL(t.Context())
				require.NoError(t, err)
				assert.Contains(t, u, "inventory.html")
			},
		},
		{
			Name:        "test_login_with_invalid_credentials",
			Description: "Test login with invalid credentials shows error",
			Feature:     FeatureLogin,
			Tags:        smoke(FeatureLogin),
			Run: func(t *harness.T) {
				s := openShop(t)
				creds := t.Target().Credentials
				s.submit(creds.InvalidUser, creds.InvalidPassword)
				assert.True(t, s.login.IsErrorDisplayed(t.Context()), "error message should be displayed")
				msg, err := s.login.ErrorMessage(t.Context())
				require.NoError(t, err)
				assert.Contains(t, msg, "Epic sadface")
				t.Logf("Error message displayed: %s", msg)
			},
		},
		{
			Name:        "test_login_with_locked_user",
			Description: "Test login with locked user shows appropriate error",
			Feature:     FeatureLogin,
			Tags:        smoke(FeatureLogin),
			Run: func(t *harness.T) {
				s := openShop(t)
				creds := t.Target().Credentials
				s.submit(creds.LockedOutUser, creds.Password)
				msg, err := s.login.ErrorMessage(t.Context())
				require.NoError(t, err)
				assert.Contains(t, strings.ToLower(msg), "locked out")
				t.Step("Dismiss the error", func() {
					require.NoError(t, s.login.CloseError(t.Context()))
				})
			},
		},
	}
}

func cartCases() []harness.Case {
	return []harness.Case{
		{
			Name:        "test_add_item_to_cart",
			Description: "Test adding item to shopping cart",
			Feature:     FeatureCart,
			Tags:        regression(FeatureCart),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				s.addFirstItem()
				count, err := s.inventory.CartBadgeCount(t.Context())
				require.NoError(t, err)
				assert.Equal(t, "1", count, "cart badge should show one item")
				assert.True(t, s.inventory.IsRemoveButtonVisible(t.Context()), "remove button should be visible")
			},
		},
		{
			Name:        "test_remove_item_from_cart",
			Description: "Test removing item from shopping cart",
			Feature:     FeatureCart,
			Tags:        regression(FeatureCart),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				s.addFirstItem()
				t.Step("Remove the product from the listing", func() {
					require.NoError(t, s.inventory.RemoveFirstItemFromCart(t.Context()))
				})
				count, err := s.inventory.CartBadgeCount(t.Context())
				require.NoError(t, err)
				assert.Equal(t, "0", count, "cart should be empty")
			},
		},
		{
			Name:        "test_view_cart_page",
			Description: "Test viewing cart page",
			Feature:     FeatureCart,
			Tags:        regression(FeatureCart),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				name := s.addFirstItem()
				s.openCart()
				assert.True(t, s.cart.IsDisplayed(t.Context()), "cart page should be displayed")
				n, err := s.cart.ItemCount(t.Context())
				require.NoError(t, err)
				assert.Equal(t, 1, n)
				ok, err := s.cart.ContainsItem(t.Context(), name)
				require.NoError(t, err)
				assert.True(t, ok, "cart should list %q", name)
				u, err := s.cart.CurrentURL(t.Context())
				require.NoError(t, err)
				assert.Contains(t, u, "cart.html")
			},
		},
		{
			Name:        "test_remove_item_from_cart_page",
			Description: "Test removing item from cart page",
			Feature:     FeatureCart,
			Tags:        regression(FeatureCart),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				s.addFirstItem()
				s.openCart()
				t.Step("Remove the product from the cart page", func() {
					require.NoError(t, s.cart.RemoveFirstItem(t.Context()))
				})
				empty, err := s.cart.IsEmpty(t.Context())
				require.NoError(t, err)
				assert.True(t, empty, "cart should be empty")
			},
		},
		{
			Name:        "test_continue_shopping",
			Description: "Test returning to the inventory from the cart",
			Feature:     FeatureCart,
			Tags:        regression(FeatureCart),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				s.openCart()
				t.Step("Continue shopping", func() {
					require.NoError(t, s.cart.ContinueShopping(t.Context()))
				})
				assert.True(t, s.inventory.IsDisplayed(t.Context()), "inventory should be displayed again")
			},
		},
	}
}

func logoutCases() []harness.Case {
	return []harness.Case{
		{
			Name:        "test_logout_functionality",
			Description: "Test logout functionality",
			Feature:     FeatureLogout,
			Tags:        regression(FeatureLogout),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				t.Step("Log out through the menu", func() {
					require.NoError(t, s.inventory.Logout(t.Context()))
				})
				assert.True(t, s.login.IsLoginPageDisplayed(t.Context()), "should be back on the login page")
				assert.True(t, s.inventory.VerifyLogoutSuccessful(t.Context()), "URL should be the base URL")
			},
		},
	}
}

func inventoryCases() []harness.Case {
	return []harness.Case{
		{
			Name:        "test_product_count",
			Description: "Test product count on inventory page",
			Feature:     FeatureInventory,
			Tags:        regression(FeatureInventory),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				n, err := s.inventory.ProductCount(t.Context())
				require.NoError(t, err)
				assert.Equal(t, catalogueSize, n)
				t.Logf("Product count verified: %d products", n)
			},
		},
		{
			Name:        "test_sort_products",
			Description: "Test sorting products by name and price",
			Feature:     FeatureInventory,
			Tags:        regression(FeatureInventory),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()

				t.Step("Sort by name, Z to A", func() {
					require.NoError(t, s.inventory.SortBy(t.Context(), pages.SortNameDesc))
				})
				names, err := s.inventory.ProductNames(t.Context())
				require.NoError(t, err)
				assert.True(t, sort.SliceIsSorted(names, func(i, j int) bool { return names[i] > names[j] }),
					"names should be in descending order: %v", names)

				t.Step("Sort by price, low to high", func() {
					require.NoError(t, s.inventory.SortBy(t.Context(), pages.SortPriceAsc))
				})
				prices, err := s.inventory.ProductPrices(t.Context())
				require.NoError(t, err)
				assert.True(t, sort.Float64sAreSorted(prices), "prices should be ascending: %v", prices)
			},
		},
	}
}

func checkoutCases() []harness.Case {
	return []harness.Case{
		{
			Name:        "test_complete_checkout",
			Description: "Test placing an order for one product",
			Feature:     FeatureCheckout,
			Tags:        regression(FeatureCheckout),
			Run: func(t *harness.T) {
				s := openShop(t)
				s.loginStandard()
				s.addFirstItem()
				s.openCart()
				t.Step("Start checkout", func() {
					require.NoError(t, s.cart.Checkout(t.Context()))
				})
				t.Step("Fill buyer information", func() {
					require.NoError(t, s.checkout.FillInformation(t.Context(), "Test", "Buyer", "12345"))
				})
				msg, err := s.checkout.ErrorMessage(t.Context())
				require.NoError(t, err)
				require.Empty(t, msg, "buyer form should be accepted")

				total, err := s.checkout.Subtotal(t.Context())
				require.NoError(t, err)
				assert.Greater(t, total, 0.0)

				t.Step("Finish the order", func() {
					require.NoError(t, s.checkout.Finish(t.Context()))
				})
				header, err := s.checkout.CompleteHeader(t.Context())
				require.NoError(t, err)
				assert.Equal(t, "Thank you for your order!", header)
			},
		},
	}
}

func workflowCases() []harness.Case {
	return []harness.Case{
		{
			Name:        "test_saucedemo_complete_workflow",
			Description: "Launch, verify Swag Labs, add an item, verify the cart and log out",
			Feature:     FeatureWorkflow,
			Tags:        smoke(FeatureWorkflow),
			Run: func(t *harness.T) {
				s := openShop(t)
				ok, err := s.login.VerifySwagLabsPresent(t.Context())
				require.NoError(t, err)
				require.True(t, ok, "Swag Labs should be present on the page")

				s.loginStandard()
				name := s.addFirstItem()
				assert.True(t, s.inventory.VerifyItemAddedToCart(t.Context()), "cart badge should show one item")

				s.openCart()
				ok, err = s.cart.ContainsItem(t.Context(), name)
				require.NoError(t, err)
				assert.True(t, ok, "cart should list %q", name)

				t.Step("Back to the inventory", func() {
					require.NoError(t, s.cart.ContinueShopping(t.Context()))
				})
				t.Step("Log out through the menu", func() {
					require.NoError(t, s.inventory.Logout(t.Context()))
				})
				assert.True(t, s.inventory.VerifyLogoutSuccessful(t.Context()), "logout should return to the login page")
			},
		},
	}
}
