package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

func TestErrorHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"stage order", fmt.Errorf("wrapped: %w", domain.ErrStageOrder), "macrorun stage1"},
		{"host", domain.ErrHostUnavailable, "--dry-run"},
		{"busy", domain.ErrStageInProgress, "Wait"},
		{"invalid", domain.ErrInvalidInput, "config show"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := errorHint(tt.err)
			if tt.want == "" {
				assert.Empty(t, hint)
				return
			}
			assert.Contains(t, hint, tt.want)
		})
	}
}

func TestPrintError(t *testing.T) {
	buf := new(bytes.Buffer)

	printError(buf, domain.ErrHostUnavailable)

	assert.Contains(t, buf.String(), "Error: cannot start automation host")
	assert.Contains(t, buf.String(), "Is Microsoft Excel installed?")
}

func TestNeedsServices(t *testing.T) {
	assert.False(t, needsServices(versionCmd))
	assert.False(t, needsServices(rootCmd))
	assert.True(t, needsServices(historyCmd))
	assert.True(t, needsServices(mcpServeCmd))
	assert.False(t, needsServices(mcpCmd))
}

func TestPreRun_BootstrapsOnlyWhenNeeded(t *testing.T) {
	t.Cleanup(resetServices)

	calls := 0
	var got Options
	SetBootstrap(func(opts Options) (*Services, error) {
		calls++
		got = opts
		return &Services{}, nil
	})

	_, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	_, err = execute(t, "--dry-run", "--config-dir", "/tmp/cfg", "history")
	assert.EqualError(t, err, "history service not configured")
	assert.Equal(t, 1, calls)
	assert.True(t, got.DryRun)
	assert.Equal(t, "/tmp/cfg", got.ConfigDir)
}

func TestPreRun_BootstrapError(t *testing.T) {
	t.Cleanup(resetServices)
	SetBootstrap(func(Options) (*Services, error) {
		return nil, domain.ErrHostUnavailable
	})

	_, err := execute(t, "history")

	assert.ErrorIs(t, err, domain.ErrHostUnavailable)
	assert.Contains(t, err.Error(), "initialising")
}

func TestShutdown_Idempotent(t *testing.T) {
	t.Cleanup(resetServices)
	closed := 0
	SetServices(&Services{Close: func() error {
		closed++
		return nil
	}})

	shutdown()
	shutdown()

	assert.Equal(t, 1, closed)
}

func TestSetServices_Nil(t *testing.T) {
	t.Cleanup(resetServices)

	assert.NotPanics(t, func() { SetServices(nil) })
	assert.Nil(t, pipelineService)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
