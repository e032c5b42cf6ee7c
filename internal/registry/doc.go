// Package registry supervises a population of agents as a fleet.
//
// # Overview
//
// The Registry maps agent IDs to supervised agents and offers bulk
// lifecycle operations with per-agent failure isolation:
//
//	reg := registry.New(logger)
//	reg.Register(agent)
//	result := reg.StartAll(ctx)
//
// Key operations:
//
//   - Register(agent): add an agent, wiring event forwarding
//   - Unregister(id): remove an agent (does not stop it)
//   - Get(id) / GetAll(): lookups; GetAll returns Info snapshots
//   - StartAll(ctx) / StopAll(ctx): concurrent fan-out, never short-circuits
//
// # Failure Isolation
//
// StartAll and StopAll run each agent's operation in its own goroutine and
// join all outcomes. One agent failing, hanging, or being slow never aborts
// the others; the BulkResult enumerates which IDs succeeded and which failed.
//
// # Event Forwarding
//
// When an agent is registered, the registry subscribes to its started,
// stopped, and unhealthy events and re-emits them as agentStarted,
// agentStopped, and agentUnhealthy with the original payload, so hosts can
// observe the whole fleet through one subscription point.
package registry
