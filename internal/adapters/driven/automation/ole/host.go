package ole

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/logger"
)

const (
	// xlOpenXMLWorkbookMacroEnabled is the SaveAs FileFormat for .xlsm.
	xlOpenXMLWorkbookMacroEnabled = 52

	// sFalse is returned by CoInitializeEx when the thread is already
	// initialised in the same apartment.
	sFalse = 1
)

var (
	_ driven.AutomationHost    = (*Host)(nil)
	_ driven.AutomationSession = (*Session)(nil)
	_ driven.Document          = (*Document)(nil)
)

// Host launches Excel instances over COM.
type Host struct {
	progID string
}

// NewHost creates a host for the given ProgID. Empty uses Excel.Application.
func NewHost(progID string) *Host {
	if progID == "" {
		progID = domain.DefaultProgID
	}
	return &Host{progID: progID}
}

// Launch starts a new application instance with alerts suppressed.
func (h *Host) Launch(ctx context.Context) (driven.AutomationSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := newWorker()
	var app *ole.IDispatch
	err := w.do(func() error {
		if err := coInitialize(); err != nil {
			return fmt.Errorf("initialising COM: %w", err)
		}

		unknown, err := oleutil.CreateObject(h.progID)
		if err != nil {
			ole.CoUninitialize()
			return fmt.Errorf("creating %s: %w", h.progID, err)
		}
		defer unknown.Release()

		disp, err := unknown.QueryInterface(ole.IID_IDispatch)
		if err != nil {
			ole.CoUninitialize()
			return fmt.Errorf("querying %s interface: %w", h.progID, err)
		}

		// Lets SaveAs overwrite existing artifacts without a prompt.
		if _, err := oleutil.PutProperty(disp, "DisplayAlerts", false); err != nil {
			disp.Release()
			ole.CoUninitialize()
			return fmt.Errorf("disabling alerts: %w", err)
		}

		app = disp
		return nil
	})
	if err != nil {
		w.stop()
		return nil, err
	}

	logger.Debug("launched %s", h.progID)
	return &Session{worker: w, app: app}, nil
}

func coInitialize() error {
	err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)
	if err == nil {
		return nil
	}
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
		return nil
	}
	return err
}

// Session is a running application instance.
type Session struct {
	worker *worker
	app    *ole.IDispatch
}

// SetVisible shows or hides the application window.
func (s *Session) SetVisible(visible bool) error {
	return s.worker.do(func() error {
		if _, err := oleutil.PutProperty(s.app, "Visible", visible); err != nil {
			return fmt.Errorf("setting Visible: %w", err)
		}
		return nil
	})
}

// Open opens a workbook by absolute path.
func (s *Session) Open(path string) (driven.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	var doc *Document
	err = s.worker.do(func() error {
		workbooksProp, err := oleutil.GetProperty(s.app, "Workbooks")
		if err != nil {
			return fmt.Errorf("getting Workbooks: %w", err)
		}
		workbooks := workbooksProp.ToIDispatch()
		defer workbooks.Release()

		result, err := oleutil.CallMethod(workbooks, "Open", abs)
		if err != nil {
			return fmt.Errorf("opening workbook: %w", err)
		}
		wb := result.ToIDispatch()

		name := filepath.Base(abs)
		if nameProp, err := oleutil.GetProperty(wb, "Name"); err == nil {
			name = nameProp.ToString()
		}

		doc = &Document{session: s, workbook: wb, name: name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// RunMacro invokes Application.Run with the macro name.
func (s *Session) RunMacro(name string) error {
	return s.worker.do(func() error {
		if _, err := oleutil.CallMethod(s.app, "Run", name); err != nil {
			return fmt.Errorf("running %s: %w", name, err)
		}
		return nil
	})
}

// Quit closes the application and releases COM on the worker thread.
func (s *Session) Quit() error {
	err := s.worker.do(func() error {
		_, quitErr := oleutil.CallMethod(s.app, "Quit")
		s.app.Release()
		ole.CoUninitialize()
		if quitErr != nil {
			return fmt.Errorf("quitting application: %w", quitErr)
		}
		return nil
	})
	s.worker.stop()
	return err
}

// Document is an open workbook.
type Document struct {
	session  *Session
	workbook *ole.IDispatch
	name     string
}

// Name returns the workbook name as reported by the application.
func (d *Document) Name() string {
	return d.name
}

// SaveAs saves the workbook as a macro-enabled file at path.
func (d *Document) SaveAs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	return d.session.worker.do(func() error {
		if _, err := oleutil.CallMethod(d.workbook, "SaveAs", abs, xlOpenXMLWorkbookMacroEnabled); err != nil {
			return fmt.Errorf("saving %s: %w", filepath.Base(abs), err)
		}
		return nil
	})
}

// Close closes the workbook. With discardChanges the workbook is closed
// with SaveChanges=false; otherwise the application default applies.
func (d *Document) Close(discardChanges bool) error {
	return d.session.worker.do(func() error {
		defer d.workbook.Release()

		var err error
		if discardChanges {
			_, err = oleutil.CallMethod(d.workbook, "Close", false)
		} else {
			_, err = oleutil.CallMethod(d.workbook, "Close")
		}
		if err != nil {
			return fmt.Errorf("closing %s: %w", d.name, err)
		}
		return nil
	})
}
