//go:build e2e

// internal/suites/e2e_helpers_test.go
package suites_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser/engines"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/harness"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/reporting"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/suites"
)

// e2eConfig loads defaults plus the usual environment overrides and pins the engine.
func e2eConfig(t *testing.T, engine string) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix("SWAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)
	cfg.SetBrowserEngine(engine)
	cfg.ReportCfg.Dir = os.Getenv("E2E_REPORT_DIR")
	if cfg.ReportCfg.Dir == "" {
		cfg.ReportCfg.Dir = t.TempDir()
	}
	cfg.ScreenshotCfg.Dir = filepath.Join(cfg.ReportCfg.Dir, "screenshots")
	return cfg
}

// runEngine runs every case on one engine and writes the reports.
func runEngine(t *testing.T, engine string) {
	cfg := e2eConfig(t, engine)
	logger := zaptest.NewLogger(t)

	mgr, err := engines.NewManager(cfg.Browser(), true, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		assert.NoError(t, mgr.Shutdown(ctx))
	})

	h := harness.New(cfg, mgr, logger)
	h.Begin()
	cases := suites.Select(suites.All(), cfg.Runner().Features, cfg.Runner().Tags)

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			status := h.RunCase(context.Background(), c)
			if status == reporting.StatusFailed {
				for _, rec := range h.Recorder().Results() {
					if rec.Name == c.Name {
						t.Errorf("%s failed: %s", c.Name, rec.ErrorDetails)
					}
				}
			}
		})
	}

	art, err := h.Finish()
	require.NoError(t, err)
	t.Logf("reports: %s %s %s", art.HTML, art.JSON, art.JUnit)
}
