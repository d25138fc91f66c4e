package driven

import "context"

// AutomationHost starts sessions against an installed spreadsheet application.
type AutomationHost interface {
	// Launch starts (or attaches to) the external application process.
	Launch(ctx context.Context) (AutomationSession, error)
}

// AutomationSession is a live handle to the external application.
// Implementations must be safe to call from any goroutine.
type AutomationSession interface {
	// SetVisible shows or hides the application window.
	SetVisible(visible bool) error

	// Open opens the workbook at path and returns a handle to it.
	Open(path string) (Document, error)

	// RunMacro runs a macro by name without arguments.
	RunMacro(name string) error

	// Quit asks the application to terminate and releases the handle.
	Quit() error
}

// Document is a workbook opened inside an AutomationSession.
type Document interface {
	// Name returns the workbook name as reported by the host.
	Name() string

	// SaveAs saves the workbook under a new path.
	SaveAs(path string) error

	// Close closes the workbook. When discardChanges is true unsaved
	// changes are thrown away.
	Close(discardChanges bool) error
}
