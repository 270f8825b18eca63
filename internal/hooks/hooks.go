// Package hooks lets components subscribe to relay lifecycle events.
package hooks

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/soyeahso/relaybot/internal/logging"
)

// Event names.
const (
	EventMessageReceived = "message_received"
	EventMessageRelayed  = "message_relayed"
	EventDeliveryFailed  = "delivery_failed"
	EventGuildJoin       = "guild_join"
	EventGuildLeave      = "guild_leave"
	EventBotReady        = "bot_ready"
	EventBotStop         = "bot_stop"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventMessageReceived,
	EventMessageRelayed,
	EventDeliveryFailed,
	EventGuildJoin,
	EventGuildLeave,
	EventBotReady,
	EventBotStop,
}

// Known reports whether event is one of AllEvents.
func Known(event string) bool {
	return slices.Contains(AllEvents, event)
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// String returns a data value as a string, or "" when absent.
func (p Payload) String(key string) string {
	switch v := p.Data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Handler handles a hook event. A returned error is logged and does not
// stop later handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager manages hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	pending  sync.WaitGroup
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event under name.
func (m *Manager) On(event, name string, handler Handler) {
	if !Known(event) {
		m.log.Warn().Str("event", event).Str("handler", name).Msg("registering handler for unknown event")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = slices.DeleteFunc(m.handlers[event], func(h namedHandler) bool {
		return h.name == name
	})
}

func (m *Manager) snapshot(event string) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.handlers[event])
}

// Emit calls every handler for event in registration order.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	payload := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		m.call(ctx, h, payload)
	}
}

// EmitAsync calls every handler for event on its own goroutine and returns
// immediately. Wait blocks until they finish.
func (m *Manager) EmitAsync(ctx context.Context, event string, data map[string]any) {
	payload := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		h := h
		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			m.call(ctx, h, payload)
		}()
	}
}

// Wait blocks until all handlers started by EmitAsync have returned.
func (m *Manager) Wait() {
	m.pending.Wait()
}

func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().
				Interface("panic", r).
				Str("event", p.Event).
				Str("handler", h.name).
				Msg("hook handler panicked")
		}
	}()
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().
			Err(err).
			Str("event", p.Event).
			Str("handler", h.name).
			Msg("hook handler error")
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the sorted events that have at least one handler.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if len(handlers) > 0 {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	return events
}
