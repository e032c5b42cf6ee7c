// ABOUTME: Supervised agent wrapping a concrete worker's hooks with a lifecycle state machine.
// ABOUTME: Owns the recurring health-check ticker and publishes lifecycle events.

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Hooks supplies the concrete behavior for a supervised agent. The
// supervisor treats all three as opaque, potentially long-running calls.
type Hooks interface {
	// Start brings the worker up. A returned error leaves the agent in the
	// error state.
	Start(ctx context.Context) error
	// Stop tears the worker down. A returned error leaves the agent in the
	// error state.
	Stop(ctx context.Context) error
	// HealthCheck probes the worker. Errors (and panics) are converted into
	// unhealthy results by the supervisor, never propagated.
	HealthCheck(ctx context.Context) (HealthCheck, error)
}

// IDGenerator produces fresh correlation identifiers for emitted events.
type IDGenerator func() string

// Info is a read-only snapshot of an agent, safe to hand to callers.
type Info struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	State     State          `json:"state"`
	Health    HealthCheck    `json:"health"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
	LastSeen  time.Time      `json:"last_seen"`
	Metadata  map[string]any `json:"metadata"`
}

// Agent supervises a single worker: it owns the lifecycle state machine,
// the health-check ticker, and the event emitter.
type Agent struct {
	cfg     Config
	hooks   Hooks
	logger  *slog.Logger
	newID   IDGenerator
	emitter *Emitter

	// opMu serializes Start and Stop so no two lifecycle transitions can
	// ever be in flight on the same agent.
	opMu sync.Mutex

	mu         sync.RWMutex
	state      State
	startedAt  time.Time
	lastHealth HealthCheck
	healthStop chan struct{}

	// checking guards against overlapping health probes.
	checking atomic.Bool

	// probeMu serializes scheduled probes against ticker cancellation. A
	// probe dispatched by a firing that raced Stop cannot reach the hook
	// once the loop is cancelled.
	probeMu sync.Mutex
}

// Option configures optional collaborators on an Agent.
type Option func(*Agent)

// WithLogger sets the structured logger used by the agent.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithIDGenerator sets the correlation ID generator for emitted events.
// Intended for deterministic tests; the default is a fresh UUID per event.
func WithIDGenerator(gen IDGenerator) Option {
	return func(a *Agent) { a.newID = gen }
}

// New validates cfg and constructs a supervised agent around hooks.
// An invalid config prevents agent creation entirely.
func New(cfg Config, hooks Hooks, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hooks == nil {
		return nil, fmt.Errorf("%w: hooks must not be nil", ErrInvalidConfig)
	}

	a := &Agent{
		cfg:        cfg,
		hooks:      hooks,
		logger:     slog.Default(),
		newID:      func() string { return uuid.New().String() },
		state:      StateStopped,
		lastHealth: unknownHealth(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "supervisor", "agent_id", cfg.ID)
	a.emitter = NewEmitter(a.logger)
	return a, nil
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.cfg.ID }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.cfg.Name }

// Config returns a copy of the agent's configuration.
func (a *Agent) Config() Config { return a.cfg }

// State returns the current lifecycle state.
func (a *Agent) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Subscribe attaches a handler for the given event name on this agent.
func (a *Agent) Subscribe(name string, h Handler) string {
	return a.emitter.Subscribe(name, h)
}

// Unsubscribe removes a handler previously attached with Subscribe.
func (a *Agent) Unsubscribe(name, subID string) {
	a.emitter.Unsubscribe(name, subID)
}

// Start transitions the agent from stopped through starting to running,
// invoking the Start hook in between. It fails with *TransitionError when
// the agent is not stopped, and with *StartupError when the hook fails; in
// the latter case the agent lands in the error state and must be explicitly
// recovered by the caller.
func (a *Agent) Start(ctx context.Context) error {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	if s := a.State(); !s.CanStart() {
		return &TransitionError{AgentID: a.cfg.ID, Op: "start", State: s}
	}

	a.setState(StateStarting)
	a.mu.Lock()
	a.startedAt = time.Now()
	a.mu.Unlock()

	if err := a.hooks.Start(ctx); err != nil {
		a.setState(StateError)
		a.logger.Error("agent start hook failed", "error", err)
		return &StartupError{AgentID: a.cfg.ID, Err: err}
	}

	a.setState(StateRunning)
	a.startHealthLoop()
	a.emit(Event{Name: EventStarted})
	a.logger.Info("agent started", "name", a.cfg.Name, "version", a.cfg.Version)
	return nil
}

// Stop transitions the agent to stopped. Calling Stop on an agent that is
// already stopped or stopping is a silent no-op. The health ticker is
// cancelled before the Stop hook runs, waiting out any scheduled probe
// already in flight, so no health check can fire mid-shutdown. A hook
// failure leaves the agent in the error state.
func (a *Agent) Stop(ctx context.Context) error {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	switch a.State() {
	case StateStopped, StateStopping:
		return nil
	}

	a.setState(StateStopping)
	a.stopHealthLoop()

	if err := a.hooks.Stop(ctx); err != nil {
		a.setState(StateError)
		a.logger.Error("agent stop hook failed", "error", err)
		return &ShutdownError{AgentID: a.cfg.ID, Err: err}
	}

	a.setState(StateStopped)
	a.emit(Event{Name: EventStopped})
	a.logger.Info("agent stopped", "name", a.cfg.Name)
	return nil
}

// CheckHealth runs the health hook and caches the result as most recent.
// It may be called in any lifecycle state. If a probe is already in flight,
// the most recent cached result is returned without invoking the hook, so
// no two probes ever overlap on one agent.
func (a *Agent) CheckHealth(ctx context.Context) HealthCheck {
	if !a.checking.CompareAndSwap(false, true) {
		return a.lastHealthSnapshot()
	}
	defer a.checking.Store(false)
	return a.runCheck(ctx)
}

// Info returns a point-in-time snapshot of the agent. Pure read, no side
// effects, always succeeds.
func (a *Agent) Info() Info {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var startedAt *time.Time
	var uptimeMS int64
	if !a.startedAt.IsZero() {
		t := a.startedAt
		startedAt = &t
		if a.state == StateRunning {
			uptimeMS = time.Since(t).Milliseconds()
		}
	}

	deps := make([]string, len(a.cfg.Dependencies))
	copy(deps, a.cfg.Dependencies)

	return Info{
		ID:        a.cfg.ID,
		Name:      a.cfg.Name,
		State:     a.state,
		Health:    a.lastHealth,
		StartedAt: startedAt,
		LastSeen:  time.Now(),
		Metadata: map[string]any{
			"version":      a.cfg.Version,
			"dependencies": deps,
			"uptime_ms":    uptimeMS,
		},
	}
}

// setState records a transition and emits a stateChanged event. Transitions
// are already serialized by opMu, so events fire in transition order.
func (a *Agent) setState(next State) {
	a.mu.Lock()
	prev := a.state
	a.state = next
	a.mu.Unlock()

	a.logger.Debug("agent state changed", "from", prev, "to", next)
	a.emit(Event{Name: EventStateChanged, OldState: prev, NewState: next})
}

// emit fills in the envelope fields and publishes the event.
func (a *Agent) emit(evt Event) {
	evt.AgentID = a.cfg.ID
	evt.CorrelationID = a.newID()
	evt.Timestamp = time.Now()
	a.emitter.Emit(evt)
}

// startHealthLoop begins the recurring health ticker. The initial probe runs
// immediately so status is available without waiting a full interval; its
// outcome cannot abort startup, which has already succeeded.
func (a *Agent) startHealthLoop() {
	stop := make(chan struct{})
	a.mu.Lock()
	a.healthStop = stop
	a.mu.Unlock()
	go a.healthLoop(stop)
}

// stopHealthLoop cancels the ticker. It waits for a scheduled probe already
// inside the hook to finish, and closes the stop channel under probeMu, so
// once it returns no probe is running and none can fire afterwards.
func (a *Agent) stopHealthLoop() {
	a.mu.Lock()
	stop := a.healthStop
	a.healthStop = nil
	a.mu.Unlock()
	if stop == nil {
		return
	}

	a.probeMu.Lock()
	close(stop)
	a.probeMu.Unlock()
}

func (a *Agent) healthLoop(stop chan struct{}) {
	a.scheduledCheck(stop)

	ticker := time.NewTicker(a.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			go a.scheduledCheck(stop)
		}
	}
}

// scheduledCheck is the ticker-driven probe. A firing that arrives while a
// previous probe is still outstanding is skipped and logged, never queued.
// The hook is entered under probeMu after re-checking the stop channel, so
// a firing dispatched just before cancellation bails out instead of running
// concurrently with the Stop hook.
func (a *Agent) scheduledCheck(stop chan struct{}) {
	if !a.checking.CompareAndSwap(false, true) {
		a.logger.Debug("health check still in flight, skipping scheduled run")
		return
	}
	defer a.checking.Store(false)

	a.probeMu.Lock()
	defer a.probeMu.Unlock()
	select {
	case <-stop:
		return
	default:
	}
	a.runCheck(context.Background())
}

// runCheck invokes the hook, caches the result, and emits an unhealthy
// event when warranted. Callers must hold the checking flag.
func (a *Agent) runCheck(ctx context.Context) HealthCheck {
	hc := a.invokeHealthHook(ctx)

	a.mu.Lock()
	a.lastHealth = hc
	a.mu.Unlock()

	if hc.Status == HealthUnhealthy {
		a.logger.Warn("agent reported unhealthy", "message", hc.Message)
		health := hc
		a.emit(Event{Name: EventUnhealthy, Health: &health})
	}
	return hc
}

// invokeHealthHook runs the hook, converting errors and panics into
// unhealthy results. A flaky probe must never crash the supervisor.
func (a *Agent) invokeHealthHook(ctx context.Context) (hc HealthCheck) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("health check hook panicked", "panic", r)
			hc = HealthCheck{
				Status:    HealthUnhealthy,
				Timestamp: time.Now(),
				Message:   fmt.Sprintf("health check panicked: %v", r),
			}
		}
	}()

	res, err := a.hooks.HealthCheck(ctx)
	if err != nil {
		return HealthCheck{
			Status:    HealthUnhealthy,
			Timestamp: time.Now(),
			Message:   err.Error(),
		}
	}
	if res.Status == "" {
		res.Status = HealthUnknown
	}
	if res.Timestamp.IsZero() {
		res.Timestamp = time.Now()
	}
	return res
}

func (a *Agent) lastHealthSnapshot() HealthCheck {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastHealth
}
