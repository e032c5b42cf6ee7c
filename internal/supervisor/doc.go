// Package supervisor implements the lifecycle state machine and health-check
// scheduling for a single supervised agent.
//
// # Overview
//
// A supervised Agent wraps a concrete worker's Hooks (Start, Stop,
// HealthCheck) with a five-state lifecycle machine:
//
//	stopped -> starting -> running -> stopping -> stopped
//	                 \                      \
//	                  +-------> error <-----+
//
// Once running, the agent probes its own health on a recurring ticker. Each
// firing performs at most one concurrent probe; a firing that arrives while
// a previous probe is still outstanding is skipped and logged, never queued.
// An initial probe runs immediately on entering running so health status is
// available without waiting a full interval.
//
// # Events
//
// Agents publish lifecycle and health events through an explicit Emitter:
//
//   - started: the Start hook succeeded and the agent entered running
//   - stopped: the Stop hook succeeded and the agent entered stopped
//   - unhealthy: a health probe reported an unhealthy result
//   - stateChanged: every transition, carrying old and new state
//
// Every event carries a freshly generated correlation identifier for
// cross-component traceability. Within one agent, stateChanged events fire
// in the exact order transitions occur.
//
// # Error Taxonomy
//
// Construction fails with ErrInvalidConfig for any invalid Config. Start
// from a non-stopped state fails with *TransitionError carrying the current
// state. Hook failures surface as *StartupError / *ShutdownError and leave
// the agent in the error state; the agent does not retry on its own. Health
// probe failures are data, not control flow: errors and panics inside the
// HealthCheck hook become unhealthy results and never propagate.
//
// # Thread Safety
//
// Start and Stop are serialized per agent by an operation mutex. CheckHealth
// and Info may be called concurrently at any time.
package supervisor
