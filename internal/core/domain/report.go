package domain

import "time"

// StageReport describes what a successful stage produced.
type StageReport struct {
	// RunID identifies the run in history.
	RunID string

	// Stage is the stage that ran.
	Stage Stage

	// Source is the Stage 1 input the run is derived from.
	Source SourceFile

	// AddOn is the add-on path (Stage 2 only).
	AddOn string

	// Artifact is the workbook written by the stage.
	Artifact DerivedArtifact

	// Macros holds one outcome per invoked macro, in order.
	Macros []MacroOutcome

	// Overwrote is true when the artifact replaced an existing file.
	Overwrote bool

	// StartedAt is when the stage started.
	StartedAt time.Time

	// EndedAt is when the stage finished.
	EndedAt time.Time
}

// Warnings returns the macro outcomes that were downgraded to warnings.
func (r *StageReport) Warnings() []MacroOutcome {
	var warnings []MacroOutcome
	for _, m := range r.Macros {
		if m.IsWarning() {
			warnings = append(warnings, m)
		}
	}
	return warnings
}

// Duration returns how long the stage took.
func (r *StageReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// StageRun is a history row for one stage attempt.
type StageRun struct {
	// ID is the unique identifier for the run.
	ID string

	// Stage is the stage that was attempted.
	Stage Stage

	// SourcePath is the Stage 1 input path.
	SourcePath string

	// AddOnPath is the add-on path (Stage 2 only).
	AddOnPath string

	// ArtifactPath is the written workbook, empty on failure.
	ArtifactPath string

	// StartedAt is when the attempt started.
	StartedAt time.Time

	// EndedAt is when the attempt finished.
	EndedAt time.Time

	// Success indicates the artifact was written.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// Warnings is the number of macros that raised errors.
	Warnings int
}
