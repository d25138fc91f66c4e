// Package domain holds the types the two-step macro workflow is built from.
//
//   - SourceFile and DerivedArtifact: the chosen workbook and the file
//     names derived from its stem (_Re-run, _Final).
//   - PipelineState: which step has completed, with validated transitions.
//   - MacroOutcome: success or warning for one macro call.
//   - StageReport and StageRun: what a step produced and how it is kept
//     in history.
//   - AppSettings: persisted configuration with defaults.
//
// Only the standard library may be imported here; every other package
// depends on domain.
package domain
