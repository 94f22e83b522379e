// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const shutdownGracePeriod = 15 * time.Second

// Manager hands out pages from a Launcher and makes sure every page is closed
// before the launcher itself goes away. The launcher is started lazily on the
// first NewPage call.
type Manager struct {
	newLauncher func(ctx context.Context) (Launcher, error)
	launcher    Launcher
	logger      *zap.Logger

	sessions map[string]*trackedPage
	mu       sync.Mutex
	wg       sync.WaitGroup

	initOnce sync.Once
	initErr  error
}

// NewManager creates a manager. Nothing is launched until the first page is requested.
func NewManager(newLauncher func(ctx context.Context) (Launcher, error), logger *zap.Logger) *Manager {
	m := &Manager{
		newLauncher: newLauncher,
		logger:      logger.Named("browser_manager"),
		sessions:    make(map[string]*trackedPage),
	}
	m.logger.Debug("Browser manager created (launch deferred).")
	return m
}

func (m *Manager) initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		l, err := m.newLauncher(ctx)
		if err != nil {
			m.initErr = fmt.Errorf("failed to start browser engine: %w", err)
			return
		}
		m.mu.Lock()
		m.launcher = l
		m.mu.Unlock()
		m.logger.Info("Browser engine started.", zap.String("engine", l.Name()))
	})
	return m.initErr
}

// NewPage opens an isolated page. The returned page unregisters itself when closed.
func (m *Manager) NewPage(ctx context.Context) (Page, error) {
	if err := m.initialize(ctx); err != nil {
		return nil, err
	}

	l := m.current()
	p, err := l.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s page: %w", l.Name(), err)
	}

	tp := &trackedPage{Page: p, id: uuid.NewString()}
	m.wg.Add(1)
	tp.onClose = func() {
		m.mu.Lock()
		delete(m.sessions, tp.id)
		m.mu.Unlock()
		m.wg.Done()
		m.logger.Debug("Session removed from manager.", zap.String("session_id", tp.id))
	}

	m.mu.Lock()
	m.sessions[tp.id] = tp
	m.mu.Unlock()

	m.logger.Debug("New session created.", zap.String("session_id", tp.id))
	return tp, nil
}

// ActiveSessions reports how many pages are still open.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) current() Launcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.launcher
}

// Engine returns the launcher name, or "" before the first page.
func (m *Manager) Engine() string {
	l := m.current()
	if l == nil {
		return ""
	}
	return l.Name()
}

// Shutdown closes outstanding pages, waits for them (bounded by ctx) and then
// stops the launcher.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	l := m.launcher
	if l == nil {
		m.mu.Unlock()
		m.logger.Debug("Manager never launched a browser, nothing to shut down.")
		return nil
	}
	open := make([]*trackedPage, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		go func(s *trackedPage) {
			if err := s.Close(ctx); err != nil {
				m.logger.Warn("Error closing session during shutdown.", zap.String("session_id", s.id), zap.Error(err))
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Debug("All sessions closed.")
	case <-ctx.Done():
		m.logger.Warn("Timed out waiting for sessions to close, stopping engine anyway.", zap.Error(ctx.Err()))
	}

	cleanupCtx, cancel := Teardown(ctx, shutdownGracePeriod)
	defer cancel()
	if err := l.Shutdown(cleanupCtx); err != nil {
		return fmt.Errorf("failed to stop %s engine: %w", l.Name(), err)
	}
	m.logger.Info("Browser engine stopped.", zap.String("engine", l.Name()))
	return nil
}

// trackedPage decorates a Page so Close is idempotent and reported back to the manager.
type trackedPage struct {
	Page
	id        string
	onClose   func()
	closeOnce sync.Once
	closeErr  error
}

func (t *trackedPage) Close(ctx context.Context) error {
	t.closeOnce.Do(func() {
		t.closeErr = t.Page.Close(ctx)
		t.onClose()
	})
	return t.closeErr
}

// FullPageScreenshot forwards to the wrapped page when it supports it.
func (t *trackedPage) FullPageScreenshot(ctx context.Context) ([]byte, error) {
	if fp, ok := t.Page.(FullPager); ok {
		return fp.FullPageScreenshot(ctx)
	}
	return nil, fmt.Errorf("full page capture: %w", ErrUnsupported)
}

// ElementScreenshot forwards to the wrapped page when it supports it.
func (t *trackedPage) ElementScreenshot(ctx context.Context, loc Locator) ([]byte, error) {
	if ec, ok := t.Page.(ElementCapturer); ok {
		return ec.ElementScreenshot(ctx, loc)
	}
	return nil, fmt.Errorf("element capture: %w", ErrUnsupported)
}
