package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}

func TestSettingsCmd_Aliases(t *testing.T) {
	assert.Equal(t, "config", settingsCmd.Use)
	assert.Contains(t, settingsCmd.Aliases, "settings")
	assert.True(t, needsServices(settingsShowCmd), "subcommands inherit the annotation")
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	t.Cleanup(resetServices)

	_, err := execute(t, "config", "show")

	assert.EqualError(t, err, "settings service not configured")
}

func TestSettingsCmd_ShowDefaults(t *testing.T) {
	t.Setenv("MACRORUN_DRY_RUN", "")
	t.Setenv("MACRORUN_VERBOSE", "")
	setupTestServices(t)

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Automation]")
	assert.Contains(t, out, "ProgID: "+domain.DefaultProgID)
	assert.Contains(t, out, "Dry run: no")
	assert.Contains(t, out, "Preflight: yes")
	assert.Contains(t, out, "Keep: 100")
	assert.Contains(t, out, "File: (not set)")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_BareCommandShows(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestSettingsCmd_Set(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "config", "set", "history.keep", "25")

	require.NoError(t, err)
	assert.Contains(t, out, "Set history.keep = 25")
	v, ok := env.config.Get("history.keep")
	require.True(t, ok)
	assert.Equal(t, 25, v)

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Keep: 25")
}

func TestSettingsCmd_SetInvalid(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "config", "set", "history.keep", "lots")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "Run 'macrorun config show' to see the accepted settings.", errorHint(err))
}
