// internal/browser/manager_test.go
package browser_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/mocks"
)

func newManager(t *testing.T, launcher *mocks.MockLauncher) (*browser.Manager, *int) {
	t.Helper()
	launches := 0
	m := browser.NewManager(func(ctx context.Context) (browser.Launcher, error) {
		launches++
		return launcher, nil
	}, zaptest.NewLogger(t))
	return m, &launches
}

func TestManagerLaunchesOnceAndTracksPages(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	launcher.On("Name").Return("fake")
	launcher.On("NewPage", mock.Anything).Return(mocks.NewFakeShop(), nil).Twice()
	launcher.On("Shutdown", mock.Anything).Return(nil).Once()

	m, launches := newManager(t, launcher)
	ctx := context.Background()

	p1, err := m.NewPage(ctx)
	require.NoError(t, err)
	_, err = m.NewPage(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, *launches)
	assert.Equal(t, "fake", m.Engine())
	assert.Equal(t, 2, m.ActiveSessions())

	require.NoError(t, p1.Close(ctx))
	require.NoError(t, p1.Close(ctx), "close is idempotent")
	assert.Equal(t, 1, m.ActiveSessions())

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(shutdownCtx))
	assert.Equal(t, 0, m.ActiveSessions(), "shutdown closes remaining pages")
	launcher.AssertExpectations(t)
}

func TestManagerEngineDuringLaunch(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	launcher.On("Name").Return("fake")
	launcher.On("NewPage", mock.Anything).Return(mocks.NewFakeShop(), nil)
	launcher.On("Shutdown", mock.Anything).Return(nil).Once()

	m, _ := newManager(t, launcher)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p, err := m.NewPage(ctx)
			if assert.NoError(t, err) {
				assert.NoError(t, p.Close(ctx))
			}
		}()
		go func() {
			defer wg.Done()
			assert.Contains(t, []string{"", "fake"}, m.Engine())
		}()
	}
	wg.Wait()
	assert.Equal(t, "fake", m.Engine())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Engine()
	}()
	require.NoError(t, m.Shutdown(ctx))
	<-done
	launcher.AssertExpectations(t)
}

func TestManagerLaunchFailureIsSticky(t *testing.T) {
	boom := errors.New("chrome not installed")
	calls := 0
	m := browser.NewManager(func(ctx context.Context) (browser.Launcher, error) {
		calls++
		return nil, boom
	}, zaptest.NewLogger(t))

	_, err := m.NewPage(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = m.NewPage(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.NoError(t, m.Shutdown(context.Background()), "nothing to shut down")
}

func TestManagerPageOpenFailure(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	launcher.On("Name").Return("fake")
	launcher.On("NewPage", mock.Anything).Return(nil, errors.New("session not created"))

	m, _ := newManager(t, launcher)
	_, err := m.NewPage(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open fake page")
	assert.Equal(t, 0, m.ActiveSessions())
}

func TestTrackedPageForwardsCaptures(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	launcher.On("Name").Return("fake")
	plain := new(mocks.MockPage)
	launcher.On("NewPage", mock.Anything).Return(mocks.NewFakeShop(), nil).Once()
	launcher.On("NewPage", mock.Anything).Return(plain, nil).Once()

	m, _ := newManager(t, launcher)
	ctx := context.Background()

	rich, err := m.NewPage(ctx)
	require.NoError(t, err)
	full, err := rich.(browser.FullPager).FullPageScreenshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, full)

	bare, err := m.NewPage(ctx)
	require.NoError(t, err)
	_, err = bare.(browser.FullPager).FullPageScreenshot(ctx)
	assert.ErrorIs(t, err, browser.ErrUnsupported)
	_, err = bare.(browser.ElementCapturer).ElementScreenshot(ctx, browser.CSS(".title"))
	assert.ErrorIs(t, err, browser.ErrUnsupported)
}
