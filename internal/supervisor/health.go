// ABOUTME: Health check result types for supervised agents.
// ABOUTME: A health check is a point-in-time probe, distinct from lifecycle state.

package supervisor

import "time"

// HealthStatus classifies the outcome of a health probe.
type HealthStatus string

// Health statuses reported by agents.
const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnknown   HealthStatus = "unknown"
)

// HealthCheck is the result of a single health probe. Only the most recent
// result is retained per agent.
type HealthCheck struct {
	Status    HealthStatus   `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// unknownHealth is the default result for an agent that has never been probed.
func unknownHealth() HealthCheck {
	return HealthCheck{
		Status:    HealthUnknown,
		Timestamp: time.Now(),
		Message:   "no health check performed yet",
	}
}
