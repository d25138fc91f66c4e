package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

// oleHeader is the compound file signature excelize expects in a VBA project.
var oleHeader = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

func writeWorkbook(t *testing.T, name string, withVBA bool, sheets ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	if withVBA {
		bin := append(append([]byte{}, oleHeader...), make([]byte, 504)...)
		require.NoError(t, f.AddVBAProject(bin))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestInspector_MacroWorkbook(t *testing.T) {
	path := writeWorkbook(t, "report.xlsm", true, "Data")

	info, err := NewInspector().Inspect(path)

	require.NoError(t, err)
	assert.Equal(t, path, info.Path)
	assert.Equal(t, []string{"Sheet1", "Data"}, info.Sheets)
	assert.True(t, info.HasVBAProject)
}

func TestInspector_NoVBAProject(t *testing.T) {
	path := writeWorkbook(t, "plain.xlsx", false)

	info, err := NewInspector().Inspect(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, info.Sheets)
	assert.False(t, info.HasVBAProject)
}

func TestInspector_MissingFile(t *testing.T) {
	_, err := NewInspector().Inspect(filepath.Join(t.TempDir(), "gone.xlsm"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInspector_Directory(t *testing.T) {
	_, err := NewInspector().Inspect(t.TempDir())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInspector_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.xlsm")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0o600))

	_, err := NewInspector().Inspect(path)

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
