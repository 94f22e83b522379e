// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Supported automation engines.
const (
	EnginePlaywright = "playwright"
	EngineWebDriver  = "webdriver"
	EngineCDP        = "cdp"
)

// Interface defines the contract for accessing run configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Target() TargetConfig
	Report() ReportConfig
	Screenshots() ScreenshotConfig
	Runner() RunnerConfig

	// Browser Setters
	SetBrowserEngine(engine string)
	SetBrowserHeadless(bool)

	// Target Setters
	SetTargetBaseURL(u string)

	// Runner Setters
	SetRunnerWorkers(int)
	SetRunnerFilters(features, tags []string)
}

// Config holds the entire run configuration.
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	BrowserCfg    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	TargetCfg     TargetConfig     `mapstructure:"target" yaml:"target"`
	ReportCfg     ReportConfig     `mapstructure:"report" yaml:"report"`
	ScreenshotCfg ScreenshotConfig `mapstructure:"screenshots" yaml:"screenshots"`
	RunnerCfg     RunnerConfig     `mapstructure:"runner" yaml:"runner"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig          { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig        { return c.BrowserCfg }
func (c *Config) Target() TargetConfig          { return c.TargetCfg }
func (c *Config) Report() ReportConfig          { return c.ReportCfg }
func (c *Config) Screenshots() ScreenshotConfig { return c.ScreenshotCfg }
func (c *Config) Runner() RunnerConfig          { return c.RunnerCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserEngine(engine string) {
	c.BrowserCfg.Engine = strings.ToLower(strings.TrimSpace(engine))
	// The label follows the engine unless it was pinned explicitly.
	if !c.ReportCfg.labelPinned {
		c.ReportCfg.EngineLabel = DefaultEngineLabel(c.BrowserCfg.Engine)
	}
}
func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }
func (c *Config) SetTargetBaseURL(u string) { c.TargetCfg.BaseURL = strings.TrimRight(u, "/") }
func (c *Config) SetRunnerWorkers(n int)    { c.RunnerCfg.Workers = n }
func (c *Config) SetRunnerFilters(features, tags []string) {
	c.RunnerCfg.Features = features
	c.RunnerCfg.Tags = tags
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the browser sessions opened per test.
type BrowserConfig struct {
	// Engine selects the automation library: playwright, webdriver or cdp.
	Engine string `mapstructure:"engine" yaml:"engine"`
	// Type is the playwright browser family: chromium, firefox or webkit.
	Type            string          `mapstructure:"type" yaml:"type"`
	Headless        bool            `mapstructure:"headless" yaml:"headless"`
	BinaryPath      string          `mapstructure:"binary_path" yaml:"binary_path"`
	Args            []string        `mapstructure:"args" yaml:"args"`
	WindowWidth     int             `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight    int             `mapstructure:"window_height" yaml:"window_height"`
	IgnoreTLSErrors bool            `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	PageLoadTimeout time.Duration   `mapstructure:"page_load_timeout" yaml:"page_load_timeout"`
	ImplicitWait    time.Duration   `mapstructure:"implicit_wait" yaml:"implicit_wait"`
	WebDriver       WebDriverConfig `mapstructure:"webdriver" yaml:"webdriver"`
}

// WebDriverConfig configures how the WebDriver engine reaches a driver.
// When RemoteURL is empty a local chromedriver is started from DriverPath.
type WebDriverConfig struct {
	RemoteURL  string `mapstructure:"remote_url" yaml:"remote_url"`
	DriverPath string `mapstructure:"driver_path" yaml:"driver_path"`
	Port       int    `mapstructure:"port" yaml:"port"`
}

// TargetConfig describes the application under test.
type TargetConfig struct {
	BaseURL     string            `mapstructure:"base_url" yaml:"base_url"`
	Title       string            `mapstructure:"title" yaml:"title"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
}

// CredentialsConfig holds the demo shop accounts the suites log in with.
type CredentialsConfig struct {
	StandardUser    string `mapstructure:"standard_user" yaml:"standard_user"`
	LockedOutUser   string `mapstructure:"locked_out_user" yaml:"locked_out_user"`
	Password        string `mapstructure:"password" yaml:"-"`
	InvalidUser     string `mapstructure:"invalid_user" yaml:"invalid_user"`
	InvalidPassword string `mapstructure:"invalid_password" yaml:"-"`
}

// ReportConfig controls the artifacts written at the end of a run.
type ReportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	// EngineLabel prefixes report file names, e.g. Playwright_Report_<ts>.json.
	EngineLabel            string `mapstructure:"engine_label" yaml:"engine_label"`
	Environment            string `mapstructure:"environment" yaml:"environment"`
	PerformanceThresholdMs int64  `mapstructure:"performance_threshold_ms" yaml:"performance_threshold_ms"`
	HTML                   bool   `mapstructure:"html" yaml:"html"`
	JSON                   bool   `mapstructure:"json" yaml:"json"`
	JUnit                  bool   `mapstructure:"junit" yaml:"junit"`

	labelPinned bool
}

// ScreenshotConfig controls the screenshot capture utility.
type ScreenshotConfig struct {
	// Dir defaults to <report.dir>/screenshots.
	Dir           string `mapstructure:"dir" yaml:"dir"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
	OnSuccess     bool   `mapstructure:"on_success" yaml:"on_success"`
	OnFailure     bool   `mapstructure:"on_failure" yaml:"on_failure"`
	OnStep        bool   `mapstructure:"on_step" yaml:"on_step"`
	FullPage      bool   `mapstructure:"full_page" yaml:"full_page"`
}

// RunnerConfig tunes how test cases are scheduled and how long page objects wait.
type RunnerConfig struct {
	Workers     int           `mapstructure:"workers" yaml:"workers"`
	CaseTimeout time.Duration `mapstructure:"case_timeout" yaml:"case_timeout"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	Features    []string      `mapstructure:"features" yaml:"features"`
	Tags        []string      `mapstructure:"tags" yaml:"tags"`
	ShowSummary bool          `mapstructure:"show_summary" yaml:"show_summary"`
}

// DefaultEngineLabel maps an engine name to the label used in report file names.
func DefaultEngineLabel(engine string) string {
	switch engine {
	case EnginePlaywright:
		return "Playwright"
	case EngineWebDriver:
		return "Selenium"
	case EngineCDP:
		return "Chromedp"
	default:
		return "E2E"
	}
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	if err := cfg.normalize(); err != nil {
		panic(fmt.Sprintf("failed to normalize default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "swaglabs-e2e")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Browser --
	v.SetDefault("browser.engine", EnginePlaywright)
	v.SetDefault("browser.type", "chromium")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.args", []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
	})
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.page_load_timeout", "30s")
	v.SetDefault("browser.implicit_wait", "10s")
	v.SetDefault("browser.webdriver.driver_path", "chromedriver")
	v.SetDefault("browser.webdriver.port", 9515)

	// -- Target --
	v.SetDefault("target.base_url", "https://www.saucedemo.com")
	v.SetDefault("target.title", "Swag Labs")
	v.SetDefault("target.credentials.standard_user", "standard_user")
	v.SetDefault("target.credentials.locked_out_user", "locked_out_user")
	v.SetDefault("target.credentials.password", "secret_sauce")
	v.SetDefault("target.credentials.invalid_user", "invalid_user")
	v.SetDefault("target.credentials.invalid_password", "invalid_password")

	// -- Report --
	v.SetDefault("report.dir", "reports")
	v.SetDefault("report.environment", "qa")
	v.SetDefault("report.performance_threshold_ms", 5000)
	v.SetDefault("report.html", true)
	v.SetDefault("report.json", true)
	v.SetDefault("report.junit", true)

	// -- Screenshots --
	v.SetDefault("screenshots.retention_days", 7)
	v.SetDefault("screenshots.on_success", true)
	v.SetDefault("screenshots.on_failure", true)
	v.SetDefault("screenshots.on_step", true)
	v.SetDefault("screenshots.full_page", false)

	// -- Runner --
	v.SetDefault("runner.workers", 1)
	v.SetDefault("runner.case_timeout", "2m")
	v.SetDefault("runner.wait_timeout", "5s")
	v.SetDefault("runner.settle_delay", "500ms")
	v.SetDefault("runner.show_summary", true)
}

// BindLegacyEnv binds the environment variable names the suites have always
// honoured (HEADLESS, BROWSER, BASE_URL, ...) next to the SWAG_ prefixed ones.
// The first name listed for a key wins.
func BindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("browser.engine", "SWAG_BROWSER_ENGINE", "BROWSER_ENGINE")
	_ = v.BindEnv("browser.type", "SWAG_BROWSER_TYPE", "BROWSER")
	_ = v.BindEnv("browser.headless", "SWAG_BROWSER_HEADLESS", "HEADLESS", "HEADLESS_MODE")
	_ = v.BindEnv("browser.binary_path", "SWAG_BROWSER_BINARY_PATH", "CHROME_BINARY")
	_ = v.BindEnv("browser.webdriver.remote_url", "SWAG_BROWSER_WEBDRIVER_REMOTE_URL", "SELENIUM_REMOTE_URL")
	_ = v.BindEnv("target.base_url", "SWAG_TARGET_BASE_URL", "BASE_URL")
	_ = v.BindEnv("target.credentials.password", "SWAG_TARGET_CREDENTIALS_PASSWORD", "SAUCE_PASSWORD")
	_ = v.BindEnv("report.environment", "SWAG_REPORT_ENVIRONMENT", "TEST_ENVIRONMENT")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	BindLegacyEnv(v)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ReportCfg.labelPinned = cfg.ReportCfg.EngineLabel != ""

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// normalize expands home directories and fills values derived from other keys.
func (c *Config) normalize() error {
	var err error
	c.BrowserCfg.Engine = strings.ToLower(strings.TrimSpace(c.BrowserCfg.Engine))
	c.BrowserCfg.Type = strings.ToLower(strings.TrimSpace(c.BrowserCfg.Type))
	c.TargetCfg.BaseURL = strings.TrimRight(c.TargetCfg.BaseURL, "/")

	if c.ReportCfg.Dir, err = homedir.Expand(c.ReportCfg.Dir); err != nil {
		return fmt.Errorf("report.dir: %w", err)
	}
	if c.ScreenshotCfg.Dir == "" {
		c.ScreenshotCfg.Dir = filepath.Join(c.ReportCfg.Dir, "screenshots")
	} else if c.ScreenshotCfg.Dir, err = homedir.Expand(c.ScreenshotCfg.Dir); err != nil {
		return fmt.Errorf("screenshots.dir: %w", err)
	}
	if c.BrowserCfg.BinaryPath, err = homedir.Expand(c.BrowserCfg.BinaryPath); err != nil {
		return fmt.Errorf("browser.binary_path: %w", err)
	}
	if c.LoggerCfg.LogFile, err = homedir.Expand(c.LoggerCfg.LogFile); err != nil {
		return fmt.Errorf("logger.log_file: %w", err)
	}
	if c.ReportCfg.EngineLabel == "" {
		c.ReportCfg.EngineLabel = DefaultEngineLabel(c.BrowserCfg.Engine)
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.BrowserCfg.Engine {
	case EnginePlaywright, EngineWebDriver, EngineCDP:
	default:
		return fmt.Errorf("browser.engine must be one of playwright, webdriver, cdp (got %q)", c.BrowserCfg.Engine)
	}
	switch c.BrowserCfg.Type {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("browser.type must be one of chromium, firefox, webkit (got %q)", c.BrowserCfg.Type)
	}
	if c.BrowserCfg.PageLoadTimeout <= 0 {
		return fmt.Errorf("browser.page_load_timeout must be a positive duration")
	}
	if c.BrowserCfg.WindowWidth <= 0 || c.BrowserCfg.WindowHeight <= 0 {
		return fmt.Errorf("browser window size must be positive")
	}
	if err := validateBaseURL(c.TargetCfg.BaseURL); err != nil {
		return err
	}
	if c.ReportCfg.Dir == "" {
		return fmt.Errorf("report.dir is a required configuration field")
	}
	if c.ScreenshotCfg.RetentionDays < 0 {
		return fmt.Errorf("screenshots.retention_days must not be negative")
	}
	if c.RunnerCfg.Workers <= 0 {
		return fmt.Errorf("runner.workers must be a positive integer")
	}
	if c.RunnerCfg.WaitTimeout <= 0 {
		return fmt.Errorf("runner.wait_timeout must be a positive duration")
	}
	if c.RunnerCfg.SettleDelay < 0 {
		return fmt.Errorf("runner.settle_delay must not be negative")
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("target.base_url is a required configuration field")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("target.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target.base_url must use http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("target.base_url must include a host")
	}
	return nil
}
