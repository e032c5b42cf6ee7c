// Package httpapi exposes the warden fleet over HTTP.
//
// Endpoints:
//
//	GET /health              aggregate fleet health (503 when degraded)
//	GET /ready               readiness (200 once all agents are running)
//	GET /agents              Info snapshots for every agent
//	GET /agents/{id}         one agent's Info snapshot
//	GET /agents/{id}/events  recent journal events for one agent
//	GET /events              recent journal events fleet-wide
//
// The surface is a host shell over registry lookups: it never drives agent
// lifecycles itself. Degraded or erroring agents are reflected in /health
// rather than crashing the process.
package httpapi
