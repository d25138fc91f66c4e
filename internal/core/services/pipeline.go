package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
	"github.com/custodia-labs/macrorun/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// PipelineOptions tunes optional pipeline behaviour.
type PipelineOptions struct {
	// Preflight inspects workbooks before opening them in the host.
	Preflight bool

	// HistoryKeep is how many runs the store retains. Zero disables pruning.
	HistoryKeep int
}

// Pipeline sequences the two stages against a shared automation session.
type Pipeline struct {
	sessions  driving.SessionManager
	inspector driven.WorkbookInspector
	runs      driven.RunStore
	sink      driven.EventSink
	opts      PipelineOptions

	now   func() time.Time
	newID func() string
	stat  func(string) (os.FileInfo, error)

	mu      sync.Mutex
	state   domain.PipelineState
	source  *domain.SourceFile
	running bool
}

// NewPipeline creates a pipeline. inspector, runs and sink may be nil.
func NewPipeline(
	sessions driving.SessionManager,
	inspector driven.WorkbookInspector,
	runs driven.RunStore,
	sink driven.EventSink,
	opts PipelineOptions,
) *Pipeline {
	return &Pipeline{
		sessions:  sessions,
		inspector: inspector,
		runs:      runs,
		sink:      sink,
		opts:      opts,
		now:       nowUTC,
		newID:     func() string { return uuid.New().String() },
		stat:      os.Stat,
		state:     domain.StateIdle,
	}
}

// RunStage1 opens the main file, runs the Stage 1 macros and saves the
// Re-run artifact next to it.
func (p *Pipeline) RunStage1(ctx context.Context, path string) (*domain.StageReport, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	src, err := domain.NewSourceFile(path)
	if err != nil {
		return nil, err
	}

	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	p.mu.Lock()
	p.source = &src
	p.state, _ = domain.Transition(p.state, domain.StateIdle)
	p.mu.Unlock()

	report := p.newReport(domain.Stage1, src, "")

	p.emit(domain.Stage1, domain.EventProgressStarted, domain.LevelInfo, "Processing main file")
	defer p.emit(domain.Stage1, domain.EventProgressStopped, domain.LevelInfo, "")

	p.logf(domain.Stage1, domain.LevelInfo, "Processing file: %s", src.Name())
	runErr := p.stage1(ctx, src, report)
	return p.finish(ctx, report, runErr, domain.StateStage1Complete)
}

func (p *Pipeline) stage1(ctx context.Context, src domain.SourceFile, report *domain.StageReport) error {
	session, err := p.sessions.Ensure(ctx)
	if err != nil {
		return err
	}

	if err := p.preflight(domain.Stage1, src.Path); err != nil {
		return err
	}

	doc, err := p.open(session, src.Path)
	if err != nil {
		return err
	}
	defer p.releaseQuietly(domain.Stage1, doc)
	p.logf(domain.Stage1, domain.LevelInfo, "File opened successfully")

	report.Macros = p.runMacros(domain.Stage1, session, domain.Stage1Macros())

	rerun := src.RerunArtifact()
	if err := p.saveAs(domain.Stage1, doc, rerun, report); err != nil {
		return err
	}
	p.logf(domain.Stage1, domain.LevelInfo, "File saved as: %s", rerun.Name)

	if err := doc.release(false); err != nil {
		p.logf(domain.Stage1, domain.LevelWarn, "Closing %s: %v", doc.name, err)
	}
	return nil
}

// RunStage2 merges the add-on into the Stage 1 output and saves the
// Final artifact under the original stem.
func (p *Pipeline) RunStage2(ctx context.Context, addOnPath string) (*domain.StageReport, error) {
	addOnPath = strings.TrimSpace(addOnPath)
	if addOnPath == "" {
		return nil, nil
	}

	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	p.mu.Lock()
	state, source := p.state, p.source
	p.mu.Unlock()

	if source == nil || !state.CanRunStage2() {
		return nil, p.refuse(fmt.Errorf("no main file has been processed: %w", domain.ErrStageOrder))
	}
	src := *source

	// Checked before the host starts so a missing predecessor never
	// touches the automation session.
	rerun := src.RerunArtifact()
	if !p.exists(rerun.Path) {
		return nil, p.refuse(fmt.Errorf("re-run file not found: %s: %w", rerun.Name, domain.ErrStageOrder))
	}

	report := p.newReport(domain.Stage2, src, addOnPath)

	p.emit(domain.Stage2, domain.EventProgressStarted, domain.LevelInfo, "Processing add-on file")
	defer p.emit(domain.Stage2, domain.EventProgressStopped, domain.LevelInfo, "")

	p.logf(domain.Stage2, domain.LevelInfo, "Processing Add-On file: %s", filepath.Base(addOnPath))
	runErr := p.stage2(ctx, src, addOnPath, report)
	return p.finish(ctx, report, runErr, domain.StateStage2Complete)
}

func (p *Pipeline) stage2(
	ctx context.Context,
	src domain.SourceFile,
	addOnPath string,
	report *domain.StageReport,
) error {
	session, err := p.sessions.Ensure(ctx)
	if err != nil {
		return err
	}

	if err := p.preflight(domain.Stage2, addOnPath); err != nil {
		return err
	}

	rerun := src.RerunArtifact()
	primary, err := p.open(session, rerun.Path)
	if err != nil {
		return err
	}
	defer p.releaseQuietly(domain.Stage2, primary)
	p.logf(domain.Stage2, domain.LevelInfo, "Re-run file opened: %s", rerun.Name)

	secondary, err := p.open(session, addOnPath)
	if err != nil {
		return err
	}
	defer p.releaseQuietly(domain.Stage2, secondary)
	p.logf(domain.Stage2, domain.LevelInfo, "Add-On file opened: %s", secondary.name)

	report.Macros = p.runMacros(domain.Stage2, session, domain.Stage2Macros())

	final := src.FinalArtifact()
	if err := p.saveAs(domain.Stage2, primary, final, report); err != nil {
		return err
	}
	p.logf(domain.Stage2, domain.LevelInfo, "Final file saved as: %s", final.Name)

	if err := secondary.release(true); err != nil {
		p.logf(domain.Stage2, domain.LevelWarn, "Closing %s: %v", secondary.name, err)
	}
	if err := primary.release(false); err != nil {
		p.logf(domain.Stage2, domain.LevelWarn, "Closing %s: %v", primary.name, err)
	}
	return nil
}

// Resume restores the Stage 1 position for a source whose Re-run
// artifact already exists. Used when Stage 2 runs in a new process.
func (p *Pipeline) Resume(_ context.Context, sourcePath string) error {
	src, err := domain.NewSourceFile(sourcePath)
	if err != nil {
		return err
	}

	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	rerun := src.RerunArtifact()
	if !p.exists(rerun.Path) {
		return fmt.Errorf("re-run file not found: %s: %w", rerun.Name, domain.ErrStageOrder)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	state, err := domain.Transition(p.state, domain.StateStage1Complete)
	if err != nil {
		return err
	}
	p.state = state
	p.source = &src

	logger.Debug("resumed pipeline from %s", rerun.Path)
	return nil
}

// Status returns a snapshot of the pipeline position.
func (p *Pipeline) Status() driving.PipelineStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := driving.PipelineStatus{
		State:   p.state,
		Running: p.running,
	}
	if p.source != nil {
		src := *p.source
		status.Source = &src
	}
	return status
}

func (p *Pipeline) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return domain.ErrStageInProgress
	}
	p.running = true
	return nil
}

func (p *Pipeline) release() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

func (p *Pipeline) newReport(stage domain.Stage, src domain.SourceFile, addOn string) *domain.StageReport {
	return &domain.StageReport{
		RunID:     p.newID(),
		Stage:     stage,
		Source:    src,
		AddOn:     addOn,
		StartedAt: p.now(),
	}
}

// preflight inspects a workbook before the host opens it.
// Only a missing file is fatal.
func (p *Pipeline) preflight(stage domain.Stage, path string) error {
	if !p.opts.Preflight || p.inspector == nil {
		return nil
	}

	name := filepath.Base(path)
	info, err := p.inspector.Inspect(path)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%w: %s: file does not exist", domain.ErrOpenFailed, name)
	case err != nil:
		p.logf(stage, domain.LevelWarn, "Preflight could not read %s: %v", name, err)
		return nil
	}

	logger.Debug("preflight %s: %d sheet(s), vba=%t", name, len(info.Sheets), info.HasVBAProject)
	if !info.HasVBAProject {
		p.logf(stage, domain.LevelWarn, "%s has no VBA project; macros may not be found", name)
	}
	return nil
}

func (p *Pipeline) open(session driven.AutomationSession, path string) (*scopedDocument, error) {
	doc, err := session.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrOpenFailed, filepath.Base(path), err)
	}
	return &scopedDocument{doc: doc, name: filepath.Base(path)}, nil
}

// runMacros invokes each macro in order. Host errors become warnings.
func (p *Pipeline) runMacros(stage domain.Stage, session driven.AutomationSession, names []string) []domain.MacroOutcome {
	outcomes := make([]domain.MacroOutcome, 0, len(names))
	for _, name := range names {
		p.logf(stage, domain.LevelInfo, "Running %s...", name)
		if err := session.RunMacro(name); err != nil {
			outcomes = append(outcomes, domain.MacroFailure(name, err))
			p.logf(stage, domain.LevelWarn, "%s error: %v", name, err)
			continue
		}
		outcomes = append(outcomes, domain.MacroSuccess(name))
		p.logf(stage, domain.LevelInfo, "%s completed", name)
	}
	return outcomes
}

func (p *Pipeline) saveAs(
	stage domain.Stage,
	doc *scopedDocument,
	artifact domain.DerivedArtifact,
	report *domain.StageReport,
) error {
	if p.exists(artifact.Path) {
		report.Overwrote = true
		p.logf(stage, domain.LevelWarn, "%s already exists and will be overwritten", artifact.Name)
	}
	if err := doc.doc.SaveAs(artifact.Path); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrSaveFailed, artifact.Name, err)
	}
	report.Artifact = artifact
	return nil
}

// finish applies the state transition, records the run and emits the
// terminal event.
func (p *Pipeline) finish(
	ctx context.Context,
	report *domain.StageReport,
	runErr error,
	next domain.PipelineState,
) (*domain.StageReport, error) {
	report.EndedAt = p.now()

	if runErr == nil {
		p.mu.Lock()
		state, err := domain.Transition(p.state, next)
		if err == nil {
			p.state = state
		}
		p.mu.Unlock()
		runErr = err
	}

	run := &domain.StageRun{
		ID:         report.RunID,
		Stage:      report.Stage,
		SourcePath: report.Source.Path,
		AddOnPath:  report.AddOn,
		StartedAt:  report.StartedAt,
		EndedAt:    report.EndedAt,
		Warnings:   len(report.Warnings()),
	}

	if runErr != nil {
		run.Error = runErr.Error()
		p.record(ctx, run)
		p.emit(report.Stage, domain.EventFailed, domain.LevelError, failureMessage(report.Stage, runErr))
		return nil, runErr
	}

	run.Success = true
	run.ArtifactPath = report.Artifact.Path
	p.record(ctx, run)
	p.emit(report.Stage, domain.EventCompleted, domain.LevelInfo, successMessage(report))
	return report, nil
}

func (p *Pipeline) refuse(err error) error {
	p.emit(domain.Stage2, domain.EventFailed, domain.LevelError, err.Error())
	return err
}

// record stores the run. History is best effort and never fails a stage.
func (p *Pipeline) record(ctx context.Context, run *domain.StageRun) {
	if p.runs == nil {
		return
	}
	if err := p.runs.Record(ctx, run); err != nil {
		logger.Warn("recording %s run: %v", run.Stage, err)
		return
	}
	if p.opts.HistoryKeep > 0 {
		if err := p.runs.Prune(ctx, p.opts.HistoryKeep); err != nil {
			logger.Warn("pruning run history: %v", err)
		}
	}
}

func (p *Pipeline) exists(path string) bool {
	info, err := p.stat(path)
	return err == nil && !info.IsDir()
}

func (p *Pipeline) releaseQuietly(stage domain.Stage, doc *scopedDocument) {
	if err := doc.release(true); err != nil {
		p.logf(stage, domain.LevelWarn, "Releasing %s: %v", doc.name, err)
	}
}

func (p *Pipeline) logf(stage domain.Stage, level domain.EventLevel, format string, args ...any) {
	p.emit(stage, domain.EventLog, level, fmt.Sprintf(format, args...))
}

func (p *Pipeline) emit(stage domain.Stage, kind domain.EventKind, level domain.EventLevel, msg string) {
	if p.sink == nil {
		return
	}
	p.sink.Emit(domain.Event{
		Time:    p.now(),
		Stage:   stage,
		Kind:    kind,
		Level:   level,
		Message: msg,
	})
}

func successMessage(report *domain.StageReport) string {
	if report.Stage == domain.Stage2 {
		return "Process completed! Final file: " + report.Artifact.Name
	}
	return "Processed: " + report.Artifact.Name
}

func failureMessage(stage domain.Stage, err error) string {
	if stage == domain.Stage2 {
		return "Failed to process Add-On file: " + err.Error()
	}
	return "Failed to process file: " + err.Error()
}

// scopedDocument closes its document at most once.
type scopedDocument struct {
	doc      driven.Document
	name     string
	released bool
}

func (d *scopedDocument) release(discardChanges bool) error {
	if d.released {
		return nil
	}
	d.released = true
	return d.doc.Close(discardChanges)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
