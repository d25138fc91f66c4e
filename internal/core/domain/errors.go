package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Automation Errors.

	// ErrHostUnavailable indicates the spreadsheet application could not be started.
	ErrHostUnavailable = errors.New("cannot start automation host")

	// ErrOpenFailed indicates a workbook could not be opened by the automation host.
	ErrOpenFailed = errors.New("cannot open workbook")

	// ErrSaveFailed indicates a workbook could not be saved under its derived name.
	ErrSaveFailed = errors.New("cannot save workbook")

	// Pipeline Errors.

	// ErrStageOrder indicates Stage 2 was requested before Stage 1 produced its artifact.
	ErrStageOrder = errors.New("complete Step 1 first")

	// ErrStageInProgress indicates a stage is already running.
	ErrStageInProgress = errors.New("stage in progress")

	// ErrInvalidTransition indicates a pipeline state change that the state machine forbids.
	ErrInvalidTransition = errors.New("invalid pipeline transition")
)
