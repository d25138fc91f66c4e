package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("automation.prog_id", "Excel.Application"))

	val, ok := store.Get("automation.prog_id")
	assert.True(t, ok)
	assert.Equal(t, "Excel.Application", val)
	assert.Equal(t, 1, store.Writes())

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStoreWith(map[string]any{
		"str":     "value",
		"int":     3,
		"int64":   int64(100),
		"float":   float64(7),
		"bool":    true,
		"wrong":   []string{"x"},
		"boolstr": "true",
	})

	assert.Equal(t, "value", store.GetString("str"))
	assert.Equal(t, 3, store.GetInt("int"))
	assert.Equal(t, 100, store.GetInt("int64"))
	assert.Equal(t, 7, store.GetInt("float"))
	assert.True(t, store.GetBool("bool"))

	assert.Empty(t, store.GetString("wrong"))
	assert.Zero(t, store.GetInt("wrong"))
	assert.False(t, store.GetBool("boolstr"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"log.verbose": true}
	store := NewConfigStoreWith(seed)

	seed["log.verbose"] = false

	assert.True(t, store.GetBool("log.verbose"))
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}
