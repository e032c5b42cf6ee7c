// ABOUTME: Validated, immutable configuration for a supervised agent.
// ABOUTME: Invalid configs fail at construction time, never at first use.

package supervisor

import (
	"fmt"
	"regexp"
	"time"
)

// versionPattern matches semantic MAJOR.MINOR.PATCH version strings.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Config describes a supervised agent. It is supplied at construction and
// never mutated afterwards.
type Config struct {
	// ID uniquely identifies the agent within a registry.
	ID string
	// Name is a human-readable display name.
	Name string
	// Version is a semantic MAJOR.MINOR.PATCH version string.
	Version string
	// Enabled marks whether the agent should be part of fleet operations.
	Enabled bool
	// Dependencies lists IDs of agents this one depends on. Informational
	// only; the supervisor does not resolve or enforce ordering.
	Dependencies []string
	// HealthCheckInterval is the period of the recurring health probe.
	HealthCheckInterval time.Duration
	// MaxRetries is advisory for concrete agents; the supervisor itself
	// never retries a failed start or stop.
	MaxRetries int
	// Timeout is advisory for concrete agents' hook implementations.
	Timeout time.Duration
}

// Validate checks the configuration, returning an error wrapping
// ErrInvalidConfig that names the offending field.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidConfig)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
	}
	if !versionPattern.MatchString(c.Version) {
		return fmt.Errorf("%w: version %q is not MAJOR.MINOR.PATCH", ErrInvalidConfig, c.Version)
	}
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("%w: health check interval must be positive, got %s", ErrInvalidConfig, c.HealthCheckInterval)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("%w: max retries must be positive, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
