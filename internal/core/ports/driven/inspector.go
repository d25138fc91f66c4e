package driven

// WorkbookInfo is what a preflight inspection learned about a workbook.
type WorkbookInfo struct {
	// Path is the inspected file.
	Path string

	// Sheets lists worksheet names in workbook order.
	Sheets []string

	// HasVBAProject is true when the package carries a macro project.
	HasVBAProject bool
}

// WorkbookInspector reads workbook files without the automation host.
type WorkbookInspector interface {
	// Inspect reads the workbook at path.
	// Returns domain.ErrNotFound when the file does not exist.
	Inspect(path string) (*WorkbookInfo, error)
}
