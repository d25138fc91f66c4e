package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestDefaultDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	got, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, dir, got)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestDefaultDir_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}
	t.Setenv(EnvHome, "")

	got, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".macrorun"), got)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("automation.prog_id", "Excel.Application"))
	require.NoError(t, store.Set("history.keep", 20))
	require.NoError(t, store.Set("pipeline.preflight", true))

	assert.Equal(t, "Excel.Application", store.GetString("automation.prog_id"))
	assert.Equal(t, 20, store.GetInt("history.keep"))
	assert.True(t, store.GetBool("pipeline.preflight"))

	// Wrong types fall back to zero values.
	assert.Empty(t, store.GetString("history.keep"))
	assert.Zero(t, store.GetInt("automation.prog_id"))
	assert.False(t, store.GetBool("automation.prog_id"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, first.Set("automation.dry_run", true))
	require.NoError(t, first.Set("history.keep", 42))
	require.NoError(t, first.Set("log.file", "/var/log/macrorun.log"))

	second, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.True(t, second.GetBool("automation.dry_run"))
	assert.Equal(t, 42, second.GetInt("history.keep"))
	assert.Equal(t, "/var/log/macrorun.log", second.GetString("log.file"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("history.keep", 5))
	require.NoError(t, store.Set("history.enabled", false))

	content, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "[history]")
	assert.Contains(t, string(content), "keep = 5")
	assert.NotContains(t, string(content), "history.keep")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[automation]
prog_id = "Excel.Application.16"
dry_run = true

[history]
keep = 15
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "Excel.Application.16", store.GetString("automation.prog_id"))
	assert.True(t, store.GetBool("automation.dry_run"))
	assert.Equal(t, 15, store.GetInt("history.keep"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("log.verbose", true))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[broken"), 0600))

	_, err := NewConfigStore(tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestConfigStore_Set_RollsBackOnWriteFailure(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("log.file", "a.log"))

	// A directory where the temp file should go makes the write fail.
	require.NoError(t, os.Mkdir(store.Path()+".tmp", 0700))

	err = store.Set("log.file", "b.log")
	require.Error(t, err)
	assert.Equal(t, "a.log", store.GetString("log.file"))

	err = store.Set("log.verbose", true)
	require.Error(t, err)
	_, ok := store.Get("log.verbose")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "bucket.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"top":   true,
		"top.x": 2,
	})

	a, ok := nested["a"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, a["b"])
	c, ok := a["c"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", c["d"])
	assert.Equal(t, true, nested["top"])
	assert.Equal(t, 2, nested["top.x"])
}

func TestFlattenNestRoundTrip(t *testing.T) {
	flat := map[string]any{
		"automation.prog_id": "Excel.Application",
		"history.keep":       int64(10),
		"log.verbose":        false,
	}

	assert.Equal(t, flat, flattenMap(nestMap(flat), ""))
}
