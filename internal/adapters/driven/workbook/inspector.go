// Package workbook inspects spreadsheet files without the automation host.
package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
)

// vbaProjectPart is the package part that holds a workbook's macros.
const vbaProjectPart = "xl/vbaProject.bin"

// Ensure Inspector implements the interface.
var _ driven.WorkbookInspector = (*Inspector)(nil)

// Inspector reads workbook structure with excelize.
type Inspector struct{}

// NewInspector creates a workbook inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect lists the sheets of a workbook and whether it carries a VBA
// project. Missing files return domain.ErrNotFound.
func (i *Inspector) Inspect(path string) (*driven.WorkbookInfo, error) {
	stat, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat workbook: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	_, hasVBA := f.Pkg.Load(vbaProjectPart)
	return &driven.WorkbookInfo{
		Path:          path,
		Sheets:        f.GetSheetList(),
		HasVBAProject: hasVBA,
	}, nil
}
