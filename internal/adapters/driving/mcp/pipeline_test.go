package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/macrorun/internal/adapters/driven/automation/simulated"
	"github.com/custodia-labs/macrorun/internal/core/services"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
	return path
}

func TestServer_Stage2_SourcePathOverridesEarlierStage1(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	host := simulated.NewHost(simulated.Options{})
	sessions := services.NewSessionManager(host, nil)
	t.Cleanup(sessions.Shutdown)
	pipeline := services.NewPipeline(sessions, nil, nil, nil, services.PipelineOptions{})

	server, err := NewServer(&Ports{Pipeline: pipeline})
	require.NoError(t, err)

	first := writeFile(t, dir, "a.xlsm")
	second := writeFile(t, dir, "b.xlsm")
	writeFile(t, dir, "b_Re-run.xlsm")
	addOn := writeFile(t, dir, "addon.xlsm")

	_, out1, err := server.handleStage1(ctx, nil, Stage1Input{Path: first})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a_Re-run.xlsm"), out1.Artifact)

	_, out2, err := server.handleStage2(ctx, nil, Stage2Input{AddOnPath: addOn, SourcePath: second})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "b_Final.xlsm"), out2.Artifact)
	assert.FileExists(t, filepath.Join(dir, "b_Final.xlsm"))
	assert.NoFileExists(t, filepath.Join(dir, "a_Final.xlsm"))
	assert.Equal(t, second, pipeline.Status().Source.Path)
}

func TestServer_Stage2_SourcePathWithoutRerunFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	host := simulated.NewHost(simulated.Options{})
	sessions := services.NewSessionManager(host, nil)
	t.Cleanup(sessions.Shutdown)
	pipeline := services.NewPipeline(sessions, nil, nil, nil, services.PipelineOptions{})

	server, err := NewServer(&Ports{Pipeline: pipeline})
	require.NoError(t, err)

	first := writeFile(t, dir, "a.xlsm")
	second := writeFile(t, dir, "b.xlsm")
	addOn := writeFile(t, dir, "addon.xlsm")

	_, _, err = server.handleStage1(ctx, nil, Stage1Input{Path: first})
	require.NoError(t, err)

	_, _, err = server.handleStage2(ctx, nil, Stage2Input{AddOnPath: addOn, SourcePath: second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b_Re-run.xlsm")
	assert.NoFileExists(t, filepath.Join(dir, "a_Final.xlsm"))
	assert.Equal(t, first, pipeline.Status().Source.Path)
}
