// ABOUTME: Fleet registry supervising a population of agents as a unit.
// ABOUTME: Bulk lifecycle operations fan out concurrently with per-agent failure isolation.

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wardenhq/warden/internal/supervisor"
)

// ErrDuplicateAgent indicates an agent with the same ID is already registered.
var ErrDuplicateAgent = errors.New("agent already registered")

// ErrUnknownAgent indicates the specified agent is not registered.
var ErrUnknownAgent = errors.New("agent not registered")

// Registry-level event names, re-emitted from agent events with the
// original payload.
const (
	EventAgentStarted   = "agentStarted"
	EventAgentStopped   = "agentStopped"
	EventAgentUnhealthy = "agentUnhealthy"
)

// forwardedEvents maps agent event names to their registry-level names.
var forwardedEvents = map[string]string{
	supervisor.EventStarted:   EventAgentStarted,
	supervisor.EventStopped:   EventAgentStopped,
	supervisor.EventUnhealthy: EventAgentUnhealthy,
}

// entry pairs a registered agent with its forwarding subscription IDs so
// they can be detached on unregister.
type entry struct {
	agent *supervisor.Agent
	subs  map[string]string // agent event name -> subscription ID
}

// Registry manages a named collection of supervised agents. It holds
// references to agents but does not own their timers except through the
// lifecycle calls it issues.
type Registry struct {
	logger  *slog.Logger
	emitter *supervisor.Emitter

	mu     sync.RWMutex
	agents map[string]*entry
	order  []string // registration order, for deterministic snapshots
}

// New creates an empty registry. Pass nil logger for the slog default.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "registry")
	return &Registry{
		logger:  logger,
		emitter: supervisor.NewEmitter(logger),
		agents:  make(map[string]*entry),
	}
}

// Register adds an agent to the registry and subscribes forwarding handlers
// so its started/stopped/unhealthy events are re-emitted as registry-level
// events. Returns ErrDuplicateAgent if the ID is already taken.
func (r *Registry) Register(agent *supervisor.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := agent.ID()
	if _, exists := r.agents[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAgent, id)
	}

	subs := make(map[string]string, len(forwardedEvents))
	for agentEvent, registryEvent := range forwardedEvents {
		name := registryEvent
		subs[agentEvent] = agent.Subscribe(agentEvent, func(evt supervisor.Event) {
			fwd := evt
			fwd.Name = name
			r.emitter.Emit(fwd)
		})
	}

	r.agents[id] = &entry{agent: agent, subs: subs}
	r.order = append(r.order, id)
	r.logger.Info("agent registered", "agent_id", id, "total_agents", len(r.agents))
	return nil
}

// Unregister removes an agent and detaches its event forwarding. It does not
// stop the agent; that remains the caller's responsibility. Returns
// ErrUnknownAgent if no agent with that ID is registered.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, exists := r.agents[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownAgent, id)
	}

	for agentEvent, subID := range ent.subs {
		ent.agent.Unsubscribe(agentEvent, subID)
	}
	delete(r.agents, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("agent unregistered", "agent_id", id, "total_agents", len(r.agents))
	return nil
}

// Get returns the agent with the given ID, if registered.
func (r *Registry) Get(id string) (*supervisor.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ent, ok := r.agents[id]
	if !ok {
		return nil, false
	}
	return ent.agent, true
}

// GetAll returns Info snapshots for every registered agent, in registration
// order. Snapshots, not live references.
func (r *Registry) GetAll() []supervisor.Info {
	agents := r.snapshot()
	infos := make([]supervisor.Info, len(agents))
	for i, ag := range agents {
		infos[i] = ag.Info()
	}
	return infos
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// Subscribe attaches a handler for a registry-level event name.
func (r *Registry) Subscribe(name string, h supervisor.Handler) string {
	return r.emitter.Subscribe(name, h)
}

// Unsubscribe removes a handler previously attached with Subscribe.
func (r *Registry) Unsubscribe(name, subID string) {
	r.emitter.Unsubscribe(name, subID)
}

// BulkResult reports the per-agent outcomes of a StartAll or StopAll.
type BulkResult struct {
	// Succeeded lists agent IDs whose operation completed, in registration order.
	Succeeded []string
	// Failed maps agent IDs to the error their operation returned.
	Failed map[string]error
}

// Ok reports whether every agent's operation succeeded.
func (br BulkResult) Ok() bool {
	return len(br.Failed) == 0
}

// StartAll starts every registered agent concurrently and independently.
// One agent's failure never prevents or aborts another's start attempt: a
// fleet of independent agents should offer partial availability over
// all-or-nothing startup. Failures are logged and enumerated in the result;
// StartAll itself never fails.
func (r *Registry) StartAll(ctx context.Context) BulkResult {
	return r.fanOut(ctx, "start", (*supervisor.Agent).Start)
}

// StopAll asks every registered agent to stop, concurrently and best-effort.
// Shutdown is unconditional: a hung or erroring agent must not block
// releasing the others. The call completes once every attempt has resolved.
func (r *Registry) StopAll(ctx context.Context) BulkResult {
	return r.fanOut(ctx, "stop", (*supervisor.Agent).Stop)
}

// fanOut runs op on every agent in its own goroutine and joins all outcomes
// regardless of individual success or failure.
func (r *Registry) fanOut(ctx context.Context, op string, fn func(*supervisor.Agent, context.Context) error) BulkResult {
	agents := r.snapshot()

	type outcome struct {
		id  string
		err error
	}
	outcomes := make([]outcome, len(agents))

	var wg sync.WaitGroup
	for i, ag := range agents {
		wg.Add(1)
		go func(i int, ag *supervisor.Agent) {
			defer wg.Done()
			outcomes[i] = outcome{id: ag.ID(), err: fn(ag, ctx)}
		}(i, ag)
	}
	wg.Wait()

	result := BulkResult{Failed: make(map[string]error)}
	for _, oc := range outcomes {
		if oc.err != nil {
			result.Failed[oc.id] = oc.err
			r.logger.Error("bulk "+op+" failed for agent", "agent_id", oc.id, "error", oc.err)
			continue
		}
		result.Succeeded = append(result.Succeeded, oc.id)
	}

	r.logger.Info("bulk "+op+" completed",
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result
}

// snapshot copies the agent list in registration order so bulk operations
// and reads never hold the registry lock across hook invocations.
func (r *Registry) snapshot() []*supervisor.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agents := make([]*supervisor.Agent, 0, len(r.order))
	for _, id := range r.order {
		agents = append(agents, r.agents[id].agent)
	}
	return agents
}
