// internal/browser/engines/engines_test.go
package engines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

func TestNew(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := config.NewDefaultConfig().Browser()

	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			c := cfg
			c.Engine = name
			factory, err := New(c, false, logger)
			require.NoError(t, err)
			assert.NotNil(t, factory)
		})
	}

	t.Run("unknown engine", func(t *testing.T) {
		c := cfg
		c.Engine = "netscape"
		_, err := New(c, false, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown browser engine "netscape"`)
	})
}

func TestNewManagerDefersLaunch(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser()
	m, err := NewManager(cfg, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "", m.Engine(), "nothing is launched before the first page")
	assert.Equal(t, 0, m.ActiveSessions())
}
