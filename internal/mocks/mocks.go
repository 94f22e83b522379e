// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/browser"
	"github.com/ashoksingh1988/Techacademy-Final-Assessment/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Target() config.TargetConfig {
	args := m.Called()
	return args.Get(0).(config.TargetConfig)
}

func (m *MockConfig) Report() config.ReportConfig {
	args := m.Called()
	return args.Get(0).(config.ReportConfig)
}

func (m *MockConfig) Screenshots() config.ScreenshotConfig {
	args := m.Called()
	return args.Get(0).(config.ScreenshotConfig)
}

func (m *MockConfig) Runner() config.RunnerConfig {
	args := m.Called()
	return args.Get(0).(config.RunnerConfig)
}

func (m *MockConfig) SetBrowserEngine(engine string) { m.Called(engine) }
func (m *MockConfig) SetBrowserHeadless(b bool)      { m.Called(b) }
func (m *MockConfig) SetTargetBaseURL(u string)      { m.Called(u) }
func (m *MockConfig) SetRunnerWorkers(n int)         { m.Called(n) }
func (m *MockConfig) SetRunnerFilters(features, tags []string) {
	m.Called(features, tags)
}

// -- Browser Mocks --

// MockPage mocks browser.Page for error-path tests. Stateful behaviour lives in FakeShop.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockPage) CurrentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Title(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Click(ctx context.Context, loc browser.Locator) error {
	return m.Called(ctx, loc).Error(0)
}

func (m *MockPage) Fill(ctx context.Context, loc browser.Locator, value string) error {
	return m.Called(ctx, loc, value).Error(0)
}

func (m *MockPage) Text(ctx context.Context, loc browser.Locator) (string, error) {
	args := m.Called(ctx, loc)
	return args.String(0), args.Error(1)
}

func (m *MockPage) AllText(ctx context.Context, loc browser.Locator) ([]string, error) {
	args := m.Called(ctx, loc)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPage) Count(ctx context.Context, loc browser.Locator) (int, error) {
	args := m.Called(ctx, loc)
	return args.Int(0), args.Error(1)
}

func (m *MockPage) SelectOption(ctx context.Context, loc browser.Locator, value string) error {
	return m.Called(ctx, loc, value).Error(0)
}

func (m *MockPage) WaitFor(ctx context.Context, loc browser.Locator, state browser.WaitState, timeout time.Duration) (bool, error) {
	args := m.Called(ctx, loc, state, timeout)
	return args.Bool(0), args.Error(1)
}

func (m *MockPage) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPage) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockLauncher mocks browser.Launcher.
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Name() string {
	return m.Called().String(0)
}

func (m *MockLauncher) NewPage(ctx context.Context) (browser.Page, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(browser.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLauncher) Shutdown(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
