package driven

import "github.com/custodia-labs/macrorun/internal/core/domain"

// EventSink receives pipeline events.
// Emit must not block for long; it is called inline by the running stage.
type EventSink interface {
	Emit(event domain.Event)
}
