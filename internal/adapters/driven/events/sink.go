package events

import (
	"sync"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/logger"
)

var (
	_ driven.EventSink = (*LogSink)(nil)
	_ driven.EventSink = (*Fanout)(nil)
	_ driven.EventSink = Func(nil)
)

// LogSink writes events to the application logger.
// Progress markers are debug output; everything else keeps its level.
type LogSink struct{}

// NewLogSink creates a logger-backed sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Emit logs the event.
func (s *LogSink) Emit(e domain.Event) {
	switch e.Kind {
	case domain.EventProgressStarted, domain.EventProgressStopped:
		logger.Debug("%s%s", stageTag(e.Stage), e.Kind)
		return
	case domain.EventFailed:
		// The caller gets the same failure as an error and reports it.
		logger.Debug("%s%s", stageTag(e.Stage), e.Message)
		return
	}

	if e.Message == "" {
		return
	}
	switch e.Level {
	case domain.LevelError:
		logger.Error("%s%s", stageTag(e.Stage), e.Message)
	case domain.LevelWarn:
		logger.Warn("%s%s", stageTag(e.Stage), e.Message)
	default:
		logger.Info("%s%s", stageTag(e.Stage), e.Message)
	}
}

// stageTag prefixes stage-scoped lines. Session events carry no stage.
func stageTag(stage domain.Stage) string {
	if stage != domain.Stage1 && stage != domain.Stage2 {
		return ""
	}
	return "[" + stage.String() + "] "
}

// Fanout forwards events to every registered sink in order.
type Fanout struct {
	mu    sync.RWMutex
	sinks []driven.EventSink
}

// NewFanout creates a fan-out over sinks. Nil sinks are skipped.
func NewFanout(sinks ...driven.EventSink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		f.Add(s)
	}
	return f
}

// Add registers another sink.
func (f *Fanout) Add(sink driven.EventSink) {
	if sink == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sink)
}

// Emit forwards the event.
func (f *Fanout) Emit(e domain.Event) {
	f.mu.RLock()
	sinks := make([]driven.EventSink, len(f.sinks))
	copy(sinks, f.sinks)
	f.mu.RUnlock()

	for _, s := range sinks {
		s.Emit(e)
	}
}

// Func adapts a function to driven.EventSink.
type Func func(domain.Event)

// Emit calls f.
func (f Func) Emit(e domain.Event) {
	if f != nil {
		f(e)
	}
}
