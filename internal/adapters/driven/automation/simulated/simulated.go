// Package simulated provides a dry-run automation host.
//
// It never starts a spreadsheet application. Open checks the file
// exists, macros are recorded and succeed unless configured to fail, and
// SaveAs copies the opened file byte for byte to the target path. The
// pipeline therefore produces the same artifacts on any platform.
package simulated

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/logger"
)

// ErrMacroFailed is returned for macros listed in Options.FailMacros.
var ErrMacroFailed = errors.New("simulated macro failure")

var (
	_ driven.AutomationHost    = (*Host)(nil)
	_ driven.AutomationSession = (*Session)(nil)
	_ driven.Document          = (*Document)(nil)
)

// Options configures simulated behaviour.
type Options struct {
	// FailMacros names macros whose invocation returns ErrMacroFailed.
	FailMacros []string
}

// Host creates simulated sessions.
type Host struct {
	opts Options

	mu       sync.Mutex
	launches int
	last     *Session
}

// NewHost creates a dry-run host.
func NewHost(opts Options) *Host {
	return &Host{opts: opts}
}

// Launch returns a fresh simulated session.
func (h *Host) Launch(ctx context.Context) (driven.AutomationSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failing := make(map[string]bool, len(h.opts.FailMacros))
	for _, name := range h.opts.FailMacros {
		failing[name] = true
	}

	s := &Session{failing: failing}
	h.mu.Lock()
	h.launches++
	h.last = s
	h.mu.Unlock()

	logger.Info("dry run: simulated automation host started")
	return s, nil
}

// Launches returns how many sessions have been started.
func (h *Host) Launches() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.launches
}

// LastSession returns the most recently launched session, or nil.
func (h *Host) LastSession() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Session records every call made against it.
type Session struct {
	failing map[string]bool

	mu      sync.Mutex
	visible bool
	quit    bool
	calls   []string
	open    map[string]*Document
}

func (s *Session) record(format string, args ...any) {
	call := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
	logger.Debug("dry run: %s", call)
}

// Calls returns the recorded calls in order.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Visible reports the last SetVisible value.
func (s *Session) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// OpenDocuments returns the names of documents not yet closed.
func (s *Session) OpenDocuments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.open))
	for name := range s.open {
		names = append(names, name)
	}
	return names
}

// SetVisible records the requested visibility.
func (s *Session) SetVisible(visible bool) error {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
	s.record("SetVisible(%t)", visible)
	return nil
}

// Open checks the workbook exists and tracks it as open.
func (s *Session) Open(path string) (driven.Document, error) {
	if s.isQuit() {
		return nil, errors.New("session has quit")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening workbook: %s is a directory", path)
	}

	doc := &Document{session: s, path: path}
	s.mu.Lock()
	if s.open == nil {
		s.open = make(map[string]*Document)
	}
	s.open[doc.Name()] = doc
	s.mu.Unlock()

	s.record("Open(%s)", doc.Name())
	return doc, nil
}

// RunMacro records the macro and fails it when configured to.
func (s *Session) RunMacro(name string) error {
	s.record("Run(%s)", name)
	if s.failing[name] {
		return fmt.Errorf("%w: %s", ErrMacroFailed, name)
	}
	return nil
}

// Quit marks the session as finished.
func (s *Session) Quit() error {
	s.mu.Lock()
	s.quit = true
	s.mu.Unlock()
	s.record("Quit()")
	return nil
}

func (s *Session) isQuit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}

// Document is an opened file on disk.
type Document struct {
	session *Session
	path    string
}

// Name returns the file name.
func (d *Document) Name() string {
	return filepath.Base(d.path)
}

// SaveAs copies the opened file to path.
func (d *Document) SaveAs(path string) error {
	d.session.record("SaveAs(%s, %s)", d.Name(), filepath.Base(path))
	if err := copyFile(d.path, path); err != nil {
		return fmt.Errorf("saving %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Close stops tracking the document.
func (d *Document) Close(discardChanges bool) error {
	d.session.mu.Lock()
	delete(d.session.open, d.Name())
	d.session.mu.Unlock()
	d.session.record("Close(%s, discard=%t)", d.Name(), discardChanges)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".partial"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
