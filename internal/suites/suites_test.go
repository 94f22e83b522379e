// internal/suites/suites_test.go
package suites_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/harness"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/mocks"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/reporting"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/suites"
)

type fakeSessions struct{}

func (fakeSessions) NewPage(context.Context) (browser.Page, error) {
	return mocks.NewFakeShop(), nil
}

func names(cases []harness.Case) []string {
	out := make([]string, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.Name)
	}
	return out
}

func TestCatalogue(t *testing.T) {
	all := suites.All()
	assert.Len(t, all, 14)

	seen := map[string]bool{}
	for _, c := range all {
		assert.False(t, seen[c.Name], "duplicate case %s", c.Name)
		seen[c.Name] = true
		assert.NotEmpty(t, c.Description, c.Name)
		assert.NotEmpty(t, c.Tags, c.Name)
		assert.NotNil(t, c.Run, c.Name)
	}
	assert.Equal(t, []string{"login", "cart", "logout", "inventory", "checkout", "workflow"}, suites.Features(all))
}

func TestSelect(t *testing.T) {
	all := suites.All()

	tests := []struct {
		name     string
		features []string
		tags     []string
		want     int
	}{
		{"no filters", nil, nil, 14},
		{"one feature", []string{"login"}, nil, 4},
		{"feature case and spaces", []string{" LOGOUT "}, nil, 1},
		{"smoke tag", nil, []string{"smoke"}, 5},
		{"feature and tag", []string{"cart", "login"}, []string{"regression"}, 5},
		{"unknown feature", []string{"payments"}, nil, 0},
		{"blank filters are ignored", []string{""}, []string{" "}, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, suites.Select(all, tt.features, tt.tags), tt.want)
		})
	}
	assert.Equal(t, []string{"test_logout_functionality"}, names(suites.Select(all, []string{"logout"}, nil)))
}

func TestCasesPassAgainstFakeShop(t *testing.T) {
	cfg := config.NewDefaultConfig()
	dir := t.TempDir()
	cfg.ReportCfg.Dir = dir
	cfg.ScreenshotCfg.Dir = filepath.Join(dir, "screenshots")
	cfg.RunnerCfg.SettleDelay = 0
	cfg.RunnerCfg.Workers = 4

	h := harness.New(cfg, fakeSessions{}, zaptest.NewLogger(t))
	stats, err := h.Run(context.Background(), suites.All())
	require.NoError(t, err)

	for _, rec := range h.Recorder().Results() {
		assert.Equal(t, reporting.StatusPassed, rec.Status, "%s: %s", rec.Name, rec.ErrorDetails)
	}
	assert.Equal(t, 14, stats.Total)
	assert.Equal(t, 14, stats.Passed)
	assert.InDelta(t, 100.0, stats.PassPercentage(), 0.001)

	art, err := h.Finish()
	require.NoError(t, err)
	assert.FileExists(t, art.JSON)
}

func TestFailingPageFailsCase(t *testing.T) {
	cfg := config.NewDefaultConfig()
	dir := t.TempDir()
	cfg.ReportCfg.Dir = dir
	cfg.ScreenshotCfg.Dir = filepath.Join(dir, "screenshots")
	cfg.RunnerCfg.SettleDelay = 0
	cfg.TargetCfg.Credentials.Password = "wrong"

	h := harness.New(cfg, fakeSessions{}, zaptest.NewLogger(t))
	cases := suites.Select(suites.All(), []string{"inventory"}, nil)
	stats, err := h.Run(context.Background(), cases)
	require.NoError(t, err)
	assert.Equal(t, len(cases), stats.Failed)
	for _, rec := range h.Recorder().Results() {
		assert.Contains(t, rec.ErrorDetails, "inventory should be displayed after login")
	}
}
