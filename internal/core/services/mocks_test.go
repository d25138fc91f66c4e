package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
)

// --- Mock automation host ---

// mockHost implements driven.AutomationHost for testing.
type mockHost struct {
	launches  int
	launchErr error
	session   *mockSession
}

func newMockHost() *mockHost {
	return &mockHost{session: newMockSession()}
}

func (h *mockHost) Launch(_ context.Context) (driven.AutomationSession, error) {
	h.launches++
	if h.launchErr != nil {
		return nil, h.launchErr
	}
	return h.session, nil
}

// mockSession implements driven.AutomationSession and records every call.
type mockSession struct {
	mu         sync.Mutex
	calls      []string
	visibleErr error
	quitErr    error
	openErr    map[string]error
	macroErr   map[string]error
	saveErr    error
	closeErr   error
	docs       []*mockDocument
}

func newMockSession() *mockSession {
	return &mockSession{
		openErr:  make(map[string]error),
		macroErr: make(map[string]error),
	}
}

func (s *mockSession) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *mockSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *mockSession) SetVisible(visible bool) error {
	s.record(fmt.Sprintf("visible:%t", visible))
	return s.visibleErr
}

func (s *mockSession) Open(path string) (driven.Document, error) {
	name := filepath.Base(path)
	s.record("open:" + name)
	if err := s.openErr[name]; err != nil {
		return nil, err
	}
	doc := &mockDocument{session: s, path: path}
	s.docs = append(s.docs, doc)
	return doc, nil
}

func (s *mockSession) RunMacro(name string) error {
	s.record("macro:" + name)
	return s.macroErr[name]
}

func (s *mockSession) Quit() error {
	s.record("quit")
	return s.quitErr
}

// mockDocument implements driven.Document. SaveAs writes a placeholder file.
type mockDocument struct {
	session *mockSession
	path    string
	closes  int
	discard bool
}

func (d *mockDocument) Name() string { return filepath.Base(d.path) }

func (d *mockDocument) SaveAs(path string) error {
	d.session.record("save:" + filepath.Base(path))
	if d.session.saveErr != nil {
		return d.session.saveErr
	}
	return os.WriteFile(path, []byte("saved from "+d.Name()), 0o600)
}

func (d *mockDocument) Close(discardChanges bool) error {
	d.session.record(fmt.Sprintf("close:%s:%t", d.Name(), discardChanges))
	d.closes++
	d.discard = discardChanges
	return d.session.closeErr
}

// --- Mock event sink ---

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Emit(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) kinds() []domain.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]domain.EventKind, 0, len(s.events))
	for _, e := range s.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (s *recordingSink) last(kind domain.EventKind) *domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Kind == kind {
			e := s.events[i]
			return &e
		}
	}
	return nil
}

func (s *recordingSink) hasLevel(level domain.EventLevel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Level == level {
			return true
		}
	}
	return false
}

// --- Mock run store ---

type mockRunStore struct {
	mu        sync.Mutex
	runs      []domain.StageRun
	recordErr error
	pruned    []int
}

func (s *mockRunStore) Record(_ context.Context, run *domain.StageRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *mockRunStore) List(_ context.Context, limit int) ([]domain.StageRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.StageRun, len(s.runs))
	copy(out, s.runs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *mockRunStore) LastSuccessful(ctx context.Context, stage domain.Stage) (*domain.StageRun, error) {
	runs, _ := s.List(ctx, 0)
	for i := range runs {
		if runs[i].Stage == stage && runs[i].Success {
			return &runs[i], nil
		}
	}
	return nil, nil
}

func (s *mockRunStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruned = append(s.pruned, keep)
	return nil
}

// --- Mock workbook inspector ---

type mockInspector struct {
	info *driven.WorkbookInfo
	err  error
}

func (i *mockInspector) Inspect(path string) (*driven.WorkbookInfo, error) {
	if i.err != nil {
		return nil, i.err
	}
	if i.info != nil {
		return i.info, nil
	}
	return &driven.WorkbookInfo{Path: path, Sheets: []string{"Sheet1"}, HasVBAProject: true}, nil
}
