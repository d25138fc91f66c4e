package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/macrorun/internal/adapters/driven/automation/simulated"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/events"
	"github.com/custodia-labs/macrorun/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/macrorun/internal/core/services"
)

// testEnv is a fully wired set of services backed by the simulated host.
type testEnv struct {
	dir    string
	host   *simulated.Host
	runs   *memory.RunStore
	config *memory.ConfigStore
}

// setupTestServices installs real services over a dry-run host and
// in-memory stores, and restores the package state after the test.
func setupTestServices(t *testing.T, failMacros ...string) *testEnv {
	t.Helper()

	env := &testEnv{
		dir:    t.TempDir(),
		host:   simulated.NewHost(simulated.Options{FailMacros: failMacros}),
		runs:   memory.NewRunStore(),
		config: memory.NewConfigStore(),
	}

	fanout := events.NewFanout()
	sessions := services.NewSessionManager(env.host, fanout)
	pipeline := services.NewPipeline(sessions, nil, env.runs, fanout, services.PipelineOptions{})

	SetServices(&Services{
		Sessions: sessions,
		Pipeline: pipeline,
		History:  services.NewHistoryService(env.runs),
		Settings: services.NewSettingsService(env.config),
		Events:   fanout,
	})

	t.Cleanup(resetServices)
	return env
}

func resetServices() {
	bootstrap = nil
	sessionManager = nil
	pipelineService = nil
	historyService = nil
	settingsService = nil
	eventRegistry = nil
	closeServices = nil
	globalOpts = Options{}
	stage2Source = ""
	historyLimit = 20
	historyJSON = false
	tuiSource = ""
	tuiDir = ""
}

// workbook writes a placeholder workbook into the env folder.
func (e *testEnv) workbook(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
	return path
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
