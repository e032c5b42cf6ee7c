// ABOUTME: Tests for fleet manifest loading and agent building.
// ABOUTME: Covers TOML parsing, env expansion, defaults, and probe type mapping.

package fleet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

var testDefaults = Defaults{
	HealthInterval: 30 * time.Second,
	Timeout:        10 * time.Second,
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
[[agents]]
id = "gateway"
name = "API Gateway"
version = "2.1.0"
type = "http"
target = "https://gateway.internal/healthz"
health_interval = "15s"
timeout = "2s"
max_retries = 5
enabled = true
depends_on = ["db"]

[[agents]]
id = "db"
type = "tcp"
target = "127.0.0.1:5432"
enabled = true
`)

	m, err := LoadManifest(path, testDefaults)
	require.NoError(t, err)
	require.Len(t, m.Agents, 2)

	gw := m.Agents[0]
	assert.Equal(t, "gateway", gw.ID)
	assert.Equal(t, "API Gateway", gw.Name)
	assert.Equal(t, 15*time.Second, gw.HealthInterval)
	assert.Equal(t, 2*time.Second, gw.Timeout)
	assert.Equal(t, 5, gw.MaxRetries)
	assert.Equal(t, []string{"db"}, gw.DependsOn)

	db := m.Agents[1]
	assert.Equal(t, "db", db.Name, "name defaults to id")
	assert.Equal(t, "0.1.0", db.Version, "version gets a default")
	assert.Equal(t, 30*time.Second, db.HealthInterval, "interval falls back to fleet default")
	assert.Equal(t, 3, db.MaxRetries)
}

func TestLoadManifest_ExpandsEnvVars(t *testing.T) {
	t.Setenv("FLEET_TEST_TARGET", "127.0.0.1:9999")

	m, err := LoadManifest(writeManifest(t, `
[[agents]]
id = "svc"
type = "tcp"
target = "${FLEET_TEST_TARGET}"
enabled = true
`), testDefaults)
	require.NoError(t, err)
	require.Len(t, m.Agents, 1)
	assert.Equal(t, "127.0.0.1:9999", m.Agents[0].Target)
}

func TestLoadManifest_BadDuration(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, `
[[agents]]
id = "svc"
type = "tcp"
target = "127.0.0.1:1"
health_interval = "soon"
enabled = true
`), testDefaults)
	assert.ErrorContains(t, err, "health_interval")
}

func TestBuild(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, `
[[agents]]
id = "web"
type = "http"
target = "http://127.0.0.1:8080/healthz"
enabled = true

[[agents]]
id = "off"
type = "tcp"
target = "127.0.0.1:1"
enabled = false

[[agents]]
id = "check"
type = "exec"
target = "true"
enabled = true
`), testDefaults)
	require.NoError(t, err)

	agents, err := Build(m, nil)
	require.NoError(t, err)
	require.Len(t, agents, 2, "disabled agents are skipped")
	assert.Equal(t, "web", agents[0].ID())
	assert.Equal(t, "check", agents[1].ID())
}

func TestBuild_UnknownType(t *testing.T) {
	m := &Manifest{Agents: []AgentSpec{{
		ID: "x", Name: "x", Version: "1.0.0", Type: "carrier-pigeon",
		Target: "coop", Enabled: true, MaxRetries: 3,
		HealthInterval: time.Second, Timeout: time.Second,
	}}}

	_, err := Build(m, nil)
	assert.ErrorContains(t, err, "unknown agent type")
}
