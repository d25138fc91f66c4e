// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO and never talk to COM, files on disk
// beyond existence checks, or terminals directly.
package services
