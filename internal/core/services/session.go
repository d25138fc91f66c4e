package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
	"github.com/custodia-labs/macrorun/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionManager = (*SessionManager)(nil)

// SessionManager lazily launches the automation host once per process
// and hands the same session to every stage.
type SessionManager struct {
	host driven.AutomationHost
	sink driven.EventSink

	mu      sync.Mutex
	session driven.AutomationSession
}

// NewSessionManager creates a session manager. sink may be nil.
func NewSessionManager(host driven.AutomationHost, sink driven.EventSink) *SessionManager {
	return &SessionManager{
		host: host,
		sink: sink,
	}
}

// Ensure returns the cached session or launches a hidden one.
func (m *SessionManager) Ensure(ctx context.Context) (driven.AutomationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session, nil
	}
	if m.host == nil {
		return nil, fmt.Errorf("%w: no automation host configured", domain.ErrHostUnavailable)
	}

	session, err := m.host.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrHostUnavailable, err)
	}

	if err := session.SetVisible(false); err != nil {
		if quitErr := session.Quit(); quitErr != nil {
			logger.Warn("quitting half-started host: %v", quitErr)
		}
		return nil, fmt.Errorf("%w: hiding application: %w", domain.ErrHostUnavailable, err)
	}

	m.session = session
	logger.Info("automation host started")
	if m.sink != nil {
		m.sink.Emit(domain.Event{
			Time:    nowUTC(),
			Kind:    domain.EventLog,
			Level:   domain.LevelInfo,
			Message: "Excel application started",
		})
	}
	return session, nil
}

// Live reports whether a session has been launched.
func (m *SessionManager) Live() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Shutdown asks the host to quit. Failures are logged and dropped.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	session := m.session
	m.session = nil
	m.mu.Unlock()

	if session == nil {
		return
	}
	if err := session.Quit(); err != nil {
		logger.Warn("automation host did not quit cleanly: %v", err)
		return
	}
	logger.Info("automation host stopped")
}
