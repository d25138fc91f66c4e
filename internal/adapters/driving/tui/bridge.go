package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// EventBridge forwards pipeline events into the TUI as PipelineEvent
// messages. Events emitted before Attach are dropped.
type EventBridge struct {
	mu     sync.RWMutex
	sender Sender
}

var _ driven.EventSink = (*EventBridge)(nil)

// NewEventBridge creates a detached bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{}
}

// Attach starts delivering events to sender.
func (b *EventBridge) Attach(sender Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sender = sender
}

// Detach stops delivery.
func (b *EventBridge) Detach() {
	b.Attach(nil)
}

// Emit implements driven.EventSink. Steps run inside tea commands, so
// Send never blocks on the program's own update loop.
func (b *EventBridge) Emit(event domain.Event) {
	b.mu.RLock()
	sender := b.sender
	b.mu.RUnlock()

	if sender == nil {
		return
	}
	sender.Send(messages.PipelineEvent{Event: event})
}
