// internal/suites/suites.go
package suites

import (
	"slices"
	"strings"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/harness"
)

// Features.
const (
	FeatureLogin     = "login"
	FeatureCart      = "cart"
	FeatureLogout    = "logout"
	FeatureInventory = "inventory"
	FeatureCheckout  = "checkout"
	FeatureWorkflow  = "workflow"
)

// Tags.
const (
	TagSmoke      = "smoke"
	TagRegression = "regression"
)

// All returns every case, grouped by feature in a stable order.
func All() []harness.Case {
	var cases []harness.Case
	for _, group := range [][]harness.Case{
		loginCases(),
		cartCases(),
		logoutCases(),
		inventoryCases(),
		checkoutCases(),
		workflowCases(),
	} {
		cases = append(cases, group...)
	}
	return cases
}

// Select keeps the cases matching every non-empty filter. A case matches
// the feature filter when its feature is listed, and the tag filter when it
// carries at least one listed tag. Matching ignores case.
func Select(cases []harness.Case, features, tags []string) []harness.Case {
	features = lowerAll(features)
	tags = lowerAll(tags)
	var out []harness.Case
	for _, c := range cases {
		if len(features) > 0 && !slices.Contains(features, strings.ToLower(c.Feature)) {
			continue
		}
		if len(tags) > 0 && !slices.ContainsFunc(c.Tags, func(tag string) bool {
			return slices.Contains(tags, strings.ToLower(tag))
		}) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Features lists the distinct features of cases in order of first appearance.
func Features(cases []harness.Case) []string {
	var out []string
	for _, c := range cases {
		if !slices.Contains(out, c.Feature) {
			out = append(out, c.Feature)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
