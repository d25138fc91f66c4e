package domain

import "fmt"

// Stage identifies one user-triggered phase of the pipeline.
type Stage int

const (
	// Stage1 processes the main file.
	Stage1 Stage = iota + 1
	// Stage2 merges the add-on file into the Stage 1 output.
	Stage2
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case Stage1:
		return "stage1"
	case Stage2:
		return "stage2"
	default:
		return "unknown"
	}
}

// Title returns the label shown to users.
func (s Stage) Title() string {
	switch s {
	case Stage1:
		return "Step 1: Process Main File"
	case Stage2:
		return "Step 2: Process Add-On File"
	default:
		return "Unknown step"
	}
}

// ParseStage converts a string to a Stage.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "stage1", "1":
		return Stage1, nil
	case "stage2", "2":
		return Stage2, nil
	default:
		return 0, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, s)
	}
}

// PipelineState is the position of the two-stage pipeline.
type PipelineState string

const (
	StateIdle           PipelineState = "idle"
	StateStage1Complete PipelineState = "stage1_complete"
	StateStage2Complete PipelineState = "stage2_complete"
)

// CanRunStage2 reports whether Stage 2 may be invoked from this state.
func (s PipelineState) CanRunStage2() bool {
	return s == StateStage1Complete || s == StateStage2Complete
}

// Transition validates a state change and returns the new state.
//
// Stage 1 may always be (re)started. A failed Stage 1 drops back to idle.
// Stage 2 completes only from a state where it is invokable.
func Transition(from, to PipelineState) (PipelineState, error) {
	if !isAllowedTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

func isAllowedTransition(from, to PipelineState) bool {
	switch to {
	case StateIdle, StateStage1Complete:
		return from == StateIdle || from == StateStage1Complete || from == StateStage2Complete
	case StateStage2Complete:
		return from.CanRunStage2()
	default:
		return false
	}
}
