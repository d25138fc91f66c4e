package driving

import (
	"context"

	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
)

// SessionManager owns the single automation session of the process.
type SessionManager interface {
	// Ensure returns the live session, launching it on first use.
	Ensure(ctx context.Context) (driven.AutomationSession, error)

	// Live reports whether a session has been launched.
	Live() bool

	// Shutdown quits the session if one exists. Errors are swallowed.
	Shutdown()
}
