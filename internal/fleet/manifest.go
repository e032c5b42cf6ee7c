// ABOUTME: Declarative fleet manifest loading from TOML.
// ABOUTME: Supports environment variable expansion and duration parsing per agent.

package fleet

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Manifest declares the agents a warden daemon supervises.
type Manifest struct {
	Agents []AgentSpec `toml:"agents"`
}

// AgentSpec is one [[agents]] block in the manifest.
type AgentSpec struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	Version   string   `toml:"version"`
	Type      string   `toml:"type"`   // http, tcp, or exec
	Target    string   `toml:"target"` // URL, host:port, or command line
	Enabled   bool     `toml:"enabled"`
	DependsOn []string `toml:"depends_on"`

	MaxRetries int `toml:"max_retries"`

	HealthInterval time.Duration `toml:"-"`
	Timeout        time.Duration `toml:"-"`

	// Raw string values for TOML unmarshaling
	HealthIntervalRaw string `toml:"health_interval"`
	TimeoutRaw        string `toml:"timeout"`
}

// Defaults supplies fleet-wide fallbacks for per-agent fields left unset.
type Defaults struct {
	HealthInterval time.Duration
	Timeout        time.Duration
}

// LoadManifest reads a TOML manifest from path. Environment variables in the
// format ${VAR_NAME} are expanded before parsing. Per-agent durations fall
// back to the supplied defaults when unset.
func LoadManifest(path string, defaults Defaults) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var m Manifest
	if err := toml.Unmarshal([]byte(expanded), &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	for i := range m.Agents {
		spec := &m.Agents[i]
		if err := parseSpecDurations(spec, defaults); err != nil {
			return nil, fmt.Errorf("agent %q: %w", spec.ID, err)
		}
		if spec.Name == "" {
			spec.Name = spec.ID
		}
		if spec.Version == "" {
			spec.Version = "0.1.0"
		}
		if spec.MaxRetries == 0 {
			spec.MaxRetries = 3
		}
	}

	return &m, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

func parseSpecDurations(spec *AgentSpec, defaults Defaults) error {
	spec.HealthInterval = defaults.HealthInterval
	if spec.HealthIntervalRaw != "" {
		d, err := time.ParseDuration(spec.HealthIntervalRaw)
		if err != nil {
			return fmt.Errorf("health_interval: %w", err)
		}
		spec.HealthInterval = d
	}

	spec.Timeout = defaults.Timeout
	if spec.TimeoutRaw != "" {
		d, err := time.ParseDuration(spec.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		spec.Timeout = d
	}
	return nil
}
