package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

func TestSessionManager_Ensure_LaunchesHidden(t *testing.T) {
	host := newMockHost()
	sink := &recordingSink{}
	manager := NewSessionManager(host, sink)

	session, err := manager.Ensure(context.Background())

	require.NoError(t, err)
	assert.Same(t, host.session, session)
	assert.True(t, manager.Live())
	assert.Equal(t, []string{"visible:false"}, host.session.Calls())
	started := sink.last(domain.EventLog)
	require.NotNil(t, started)
	assert.Equal(t, "Excel application started", started.Message)
}

func TestSessionManager_Ensure_Idempotent(t *testing.T) {
	host := newMockHost()
	manager := NewSessionManager(host, nil)

	first, err := manager.Ensure(context.Background())
	require.NoError(t, err)
	second, err := manager.Ensure(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, host.launches)
}

func TestSessionManager_Ensure_LaunchFailure(t *testing.T) {
	host := newMockHost()
	host.launchErr = errors.New("class not registered")
	manager := NewSessionManager(host, nil)

	session, err := manager.Ensure(context.Background())

	require.Error(t, err)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, domain.ErrHostUnavailable)
	assert.Contains(t, err.Error(), "class not registered")
	assert.False(t, manager.Live())

	// A later call retries the launch.
	host.launchErr = nil
	_, err = manager.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, host.launches)
}

func TestSessionManager_Ensure_HideFailureQuits(t *testing.T) {
	host := newMockHost()
	host.session.visibleErr = errors.New("access denied")
	manager := NewSessionManager(host, nil)

	_, err := manager.Ensure(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHostUnavailable)
	assert.Equal(t, []string{"visible:false", "quit"}, host.session.Calls())
	assert.False(t, manager.Live())
}

func TestSessionManager_Ensure_NilHost(t *testing.T) {
	manager := NewSessionManager(nil, nil)

	_, err := manager.Ensure(context.Background())

	assert.ErrorIs(t, err, domain.ErrHostUnavailable)
}

func TestSessionManager_Shutdown(t *testing.T) {
	host := newMockHost()
	manager := NewSessionManager(host, nil)
	_, err := manager.Ensure(context.Background())
	require.NoError(t, err)

	manager.Shutdown()

	assert.False(t, manager.Live())
	assert.Equal(t, []string{"visible:false", "quit"}, host.session.Calls())
}

func TestSessionManager_Shutdown_SwallowsErrors(t *testing.T) {
	host := newMockHost()
	host.session.quitErr = errors.New("rpc server unavailable")
	manager := NewSessionManager(host, nil)
	_, err := manager.Ensure(context.Background())
	require.NoError(t, err)

	assert.NotPanics(t, manager.Shutdown)
	assert.False(t, manager.Live())
}

func TestSessionManager_Shutdown_WithoutSession(t *testing.T) {
	host := newMockHost()
	manager := NewSessionManager(host, nil)

	manager.Shutdown()
	manager.Shutdown()

	assert.Empty(t, host.session.Calls())
	assert.Zero(t, host.launches)
}
