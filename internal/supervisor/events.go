// ABOUTME: Explicit publish-subscribe emitter for agent lifecycle events.
// ABOUTME: Handlers are registered per event name and invoked synchronously in subscription order.

package supervisor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event names emitted by supervised agents.
const (
	EventStarted      = "started"
	EventStopped      = "stopped"
	EventUnhealthy    = "unhealthy"
	EventStateChanged = "stateChanged"
)

// Event is the payload delivered to subscribed handlers. Every event carries
// a fresh correlation ID, distinct from any caller-side correlation ID.
type Event struct {
	Name          string       `json:"name"`
	AgentID       string       `json:"agent_id"`
	CorrelationID string       `json:"correlation_id"`
	Timestamp     time.Time    `json:"timestamp"`
	OldState      State        `json:"old_state,omitempty"` // stateChanged only
	NewState      State        `json:"new_state,omitempty"` // stateChanged only
	Health        *HealthCheck `json:"health,omitempty"`    // unhealthy only
}

// Handler receives events published on a subscribed event name.
type Handler func(Event)

// subscription pairs a handler with its ID so dispatch order is stable.
type subscription struct {
	id      string
	handler Handler
}

// Emitter is an in-memory publish-subscribe hub keyed by event name.
// Zero or more handlers may be attached per name. Emit invokes handlers
// synchronously, so subscribers observe events in emission order.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	logger   *slog.Logger
}

// NewEmitter creates an emitter. Pass nil logger for the slog default.
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		handlers: make(map[string][]subscription),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event name and returns a
// subscription ID for later unsubscription.
func (e *Emitter) Subscribe(name string, h Handler) string {
	subID := uuid.New().String()

	e.mu.Lock()
	e.handlers[name] = append(e.handlers[name], subscription{id: subID, handler: h})
	e.mu.Unlock()

	e.logger.Debug("event handler subscribed", "event", name, "sub_id", subID)
	return subID
}

// Unsubscribe removes a handler previously registered with Subscribe.
// Unknown IDs are ignored.
func (e *Emitter) Unsubscribe(name, subID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs, ok := e.handlers[name]
	if !ok {
		return
	}
	for i, sub := range subs {
		if sub.id == subID {
			e.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.handlers[name]) == 0 {
		delete(e.handlers, name)
	}
}

// Emit delivers the event to every handler subscribed to evt.Name.
// Handlers run synchronously on the caller's goroutine; the handler list is
// copied under a read lock so handlers may subscribe or unsubscribe freely.
func (e *Emitter) Emit(evt Event) {
	e.mu.RLock()
	subs, ok := e.handlers[evt.Name]
	if !ok || len(subs) == 0 {
		e.mu.RUnlock()
		return
	}
	targets := make([]Handler, len(subs))
	for i, sub := range subs {
		targets[i] = sub.handler
	}
	e.mu.RUnlock()

	for _, h := range targets {
		h(evt)
	}
}
