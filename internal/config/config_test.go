// internal/config/config_test.go
package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, EnginePlaywright, cfg.Browser().Engine)
	assert.Equal(t, "chromium", cfg.Browser().Type)
	assert.True(t, cfg.Browser().Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser().PageLoadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Browser().ImplicitWait)
	assert.Contains(t, cfg.Browser().Args, "--no-sandbox")
	assert.Equal(t, "https://www.saucedemo.com", cfg.Target().BaseURL)
	assert.Equal(t, "standard_user", cfg.Target().Credentials.StandardUser)
	assert.Equal(t, "secret_sauce", cfg.Target().Credentials.Password)
	assert.Equal(t, "reports", cfg.Report().Dir)
	assert.Equal(t, "Playwright", cfg.Report().EngineLabel)
	assert.Equal(t, int64(5000), cfg.Report().PerformanceThresholdMs)
	assert.Equal(t, filepath.Join("reports", "screenshots"), cfg.Screenshots().Dir)
	assert.Equal(t, 7, cfg.Screenshots().RetentionDays)
	assert.Equal(t, 1, cfg.Runner().Workers)
	assert.Equal(t, 5*time.Second, cfg.Runner().WaitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Runner().SettleDelay)

	require.NoError(t, cfg.Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown engine", func(c *Config) { c.BrowserCfg.Engine = "lynx" }, "browser.engine must be one of"},
		{"unknown browser type", func(c *Config) { c.BrowserCfg.Type = "ie" }, "browser.type must be one of"},
		{"zero page load timeout", func(c *Config) { c.BrowserCfg.PageLoadTimeout = 0 }, "browser.page_load_timeout"},
		{"empty base url", func(c *Config) { c.TargetCfg.BaseURL = "" }, "target.base_url is a required"},
		{"ftp base url", func(c *Config) { c.TargetCfg.BaseURL = "ftp://example.com" }, "must use http or https"},
		{"hostless base url", func(c *Config) { c.TargetCfg.BaseURL = "https://" }, "must include a host"},
		{"empty report dir", func(c *Config) { c.ReportCfg.Dir = "" }, "report.dir is a required"},
		{"negative retention", func(c *Config) { c.ScreenshotCfg.RetentionDays = -1 }, "retention_days"},
		{"zero workers", func(c *Config) { c.RunnerCfg.Workers = 0 }, "runner.workers must be a positive integer"},
		{"zero wait timeout", func(c *Config) { c.RunnerCfg.WaitTimeout = 0 }, "runner.wait_timeout"},
		{"negative settle delay", func(c *Config) { c.RunnerCfg.SettleDelay = -time.Second }, "runner.settle_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()

	cfg.SetBrowserEngine(" WebDriver ")
	assert.Equal(t, EngineWebDriver, cfg.Browser().Engine)
	assert.Equal(t, "Selenium", cfg.Report().EngineLabel, "label should follow the engine when not pinned")

	cfg.SetBrowserHeadless(false)
	assert.False(t, cfg.Browser().Headless)

	cfg.SetTargetBaseURL("http://localhost:8080/")
	assert.Equal(t, "http://localhost:8080", cfg.Target().BaseURL)

	cfg.SetRunnerWorkers(3)
	cfg.SetRunnerFilters([]string{"login"}, []string{"smoke"})
	assert.Equal(t, 3, cfg.Runner().Workers)
	assert.Equal(t, []string{"login"}, cfg.Runner().Features)
	assert.Equal(t, []string{"smoke"}, cfg.Runner().Tags)
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
browser:
  engine: cdp
  headless: false
target:
  base_url: "http://localhost:3000/"
report:
  dir: /tmp/e2e-reports
runner:
  workers: 4
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, EngineCDP, cfg.Browser().Engine)
		assert.False(t, cfg.Browser().Headless)
		assert.Equal(t, "http://localhost:3000", cfg.Target().BaseURL)
		assert.Equal(t, "Chromedp", cfg.Report().EngineLabel)
		assert.Equal(t, filepath.Join("/tmp/e2e-reports", "screenshots"), cfg.Screenshots().Dir)
		assert.Equal(t, 4, cfg.Runner().Workers)
		assert.Equal(t, "info", cfg.Logger().Level)
	})

	t.Run("Pinned Engine Label", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("report.engine_label", "Nightly")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		cfg.SetBrowserEngine(EngineWebDriver)
		assert.Equal(t, "Nightly", cfg.Report().EngineLabel)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("runner.workers", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "runner.workers must be a positive integer")
	})

	t.Run("Legacy Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		t.Setenv("HEADLESS_MODE", "false")
		t.Setenv("BROWSER", "firefox")
		t.Setenv("CHROME_BINARY", "/opt/chrome/chrome")
		t.Setenv("BASE_URL", "https://staging.example.com")
		t.Setenv("TEST_ENVIRONMENT", "staging")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.False(t, cfg.Browser().Headless)
		assert.Equal(t, "firefox", cfg.Browser().Type)
		assert.Equal(t, "/opt/chrome/chrome", cfg.Browser().BinaryPath)
		assert.Equal(t, "https://staging.example.com", cfg.Target().BaseURL)
		assert.Equal(t, "staging", cfg.Report().Environment)
	})

	t.Run("Prefixed Variable Wins", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		t.Setenv("SWAG_BROWSER_HEADLESS", "true")
		t.Setenv("HEADLESS", "false")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.True(t, cfg.Browser().Headless)
	})
}

func TestDefaultEngineLabel(t *testing.T) {
	assert.Equal(t, "Playwright", DefaultEngineLabel(EnginePlaywright))
	assert.Equal(t, "Selenium", DefaultEngineLabel(EngineWebDriver))
	assert.Equal(t, "Chromedp", DefaultEngineLabel(EngineCDP))
	assert.Equal(t, "E2E", DefaultEngineLabel("other"))
}
