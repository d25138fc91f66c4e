// Package events provides driven.EventSink implementations.
//
// Sinks:
//   - LogSink: writes pipeline events through internal/logger
//   - Fanout: forwards every event to several sinks
//   - Func: adapts a plain function
package events
