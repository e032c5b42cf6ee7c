// ABOUTME: Builds supervised agents from manifest specs.
// ABOUTME: Maps probe types to their Hooks implementations; disabled agents are skipped.

package fleet

import (
	"fmt"
	"log/slog"

	"github.com/wardenhq/warden/internal/fleet/probes"
	"github.com/wardenhq/warden/internal/supervisor"
)

// Build constructs a supervised agent for every enabled spec in the
// manifest. Disabled agents are skipped with a log line. An invalid spec
// fails the whole build; a daemon should not come up with a partial fleet
// it was never asked for.
func Build(m *Manifest, logger *slog.Logger) ([]*supervisor.Agent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	agents := make([]*supervisor.Agent, 0, len(m.Agents))
	for _, spec := range m.Agents {
		if !spec.Enabled {
			logger.Info("skipping disabled agent", "agent_id", spec.ID)
			continue
		}

		hooks, err := buildHooks(spec)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", spec.ID, err)
		}

		agent, err := supervisor.New(supervisor.Config{
			ID:                  spec.ID,
			Name:                spec.Name,
			Version:             spec.Version,
			Enabled:             spec.Enabled,
			Dependencies:        spec.DependsOn,
			HealthCheckInterval: spec.HealthInterval,
			MaxRetries:          spec.MaxRetries,
			Timeout:             spec.Timeout,
		}, hooks, supervisor.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", spec.ID, err)
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

// buildHooks maps a spec's probe type to its Hooks implementation.
func buildHooks(spec AgentSpec) (supervisor.Hooks, error) {
	switch spec.Type {
	case "http":
		return probes.NewHTTP(spec.Target, spec.Timeout)
	case "tcp":
		return probes.NewTCP(spec.Target, spec.Timeout)
	case "exec":
		return probes.NewExec(spec.Target, spec.Timeout)
	default:
		return nil, fmt.Errorf("unknown agent type %q", spec.Type)
	}
}
