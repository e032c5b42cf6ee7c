// ABOUTME: Tests for the fleet registry.
// ABOUTME: Covers identity checks, event forwarding, and bulk failure isolation.

package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/supervisor"
)

// fleetHooks is a controllable hook set for registry tests.
type fleetHooks struct {
	startErr  error
	stopErr   error
	healthErr error
}

func (h *fleetHooks) Start(ctx context.Context) error { return h.startErr }
func (h *fleetHooks) Stop(ctx context.Context) error  { return h.stopErr }

func (h *fleetHooks) HealthCheck(ctx context.Context) (supervisor.HealthCheck, error) {
	if h.healthErr != nil {
		return supervisor.HealthCheck{}, h.healthErr
	}
	return supervisor.HealthCheck{Status: supervisor.HealthHealthy}, nil
}

func newAgent(t *testing.T, id string, hooks supervisor.Hooks) *supervisor.Agent {
	t.Helper()
	a, err := supervisor.New(supervisor.Config{
		ID:                  id,
		Name:                "Agent " + id,
		Version:             "1.0.0",
		Enabled:             true,
		HealthCheckInterval: 20 * time.Millisecond,
		MaxRetries:          3,
		Timeout:             time.Second,
	}, hooks)
	require.NoError(t, err)
	return a
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(newAgent(t, "a", &fleetHooks{})))

	err := r.Register(newAgent(t, "a", &fleetHooks{}))
	assert.ErrorIs(t, err, ErrDuplicateAgent)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_UnregisterUnknown(t *testing.T) {
	r := New(nil)
	assert.ErrorIs(t, r.Unregister("ghost"), ErrUnknownAgent)
}

func TestRegistry_RegisterUnregisterRoundTrip(t *testing.T) {
	r := New(nil)
	a := newAgent(t, "a", &fleetHooks{})
	require.NoError(t, r.Register(a))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	require.NoError(t, r.Unregister("a"))
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_GetAllPreservesRegistrationOrder(t *testing.T) {
	r := New(nil)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(newAgent(t, id, &fleetHooks{})))
	}

	infos := r.GetAll()
	require.Len(t, infos, 3)
	assert.Equal(t, "c", infos[0].ID)
	assert.Equal(t, "a", infos[1].ID)
	assert.Equal(t, "b", infos[2].ID)
}

func TestRegistry_StartAllIsolatesFailures(t *testing.T) {
	r := New(nil)
	good := newAgent(t, "good", &fleetHooks{})
	bad := newAgent(t, "bad", &fleetHooks{startErr: errors.New("boot failure")})
	require.NoError(t, r.Register(good))
	require.NoError(t, r.Register(bad))

	result := r.StartAll(context.Background())
	defer r.StopAll(context.Background())

	assert.Equal(t, []string{"good"}, result.Succeeded)
	require.Contains(t, result.Failed, "bad")
	var se *supervisor.StartupError
	assert.ErrorAs(t, result.Failed["bad"], &se)
	assert.False(t, result.Ok())

	assert.Equal(t, supervisor.StateRunning, good.State())
	assert.Equal(t, supervisor.StateError, bad.State())
}

func TestRegistry_StopAllIsBestEffort(t *testing.T) {
	r := New(nil)
	good := newAgent(t, "good", &fleetHooks{})
	bad := newAgent(t, "bad", &fleetHooks{stopErr: errors.New("flush failed")})
	require.NoError(t, r.Register(good))
	require.NoError(t, r.Register(bad))

	require.True(t, r.StartAll(context.Background()).Ok())

	result := r.StopAll(context.Background())
	assert.Equal(t, []string{"good"}, result.Succeeded)
	assert.Contains(t, result.Failed, "bad")

	assert.Equal(t, supervisor.StateStopped, good.State())
	assert.Equal(t, supervisor.StateError, bad.State())
}

func TestRegistry_HealthVisibleAfterFirstCycle(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Register(newAgent(t, "a", &fleetHooks{})))
	require.NoError(t, r.Register(newAgent(t, "b", &fleetHooks{healthErr: errors.New("down")})))

	require.True(t, r.StartAll(context.Background()).Ok())
	defer r.StopAll(context.Background())

	require.Eventually(t, func() bool {
		for _, info := range r.GetAll() {
			if info.Health.Status == supervisor.HealthUnknown {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	infos := r.GetAll()
	byID := make(map[string]supervisor.Info, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}
	assert.Equal(t, supervisor.HealthHealthy, byID["a"].Health.Status)
	assert.Equal(t, supervisor.HealthUnhealthy, byID["b"].Health.Status)
	assert.Equal(t, "down", byID["b"].Health.Message)
}

func TestRegistry_ForwardsAgentEvents(t *testing.T) {
	r := New(nil)

	var mu sync.Mutex
	got := make(map[string][]string) // event name -> agent IDs
	for _, name := range []string{EventAgentStarted, EventAgentStopped, EventAgentUnhealthy} {
		name := name
		r.Subscribe(name, func(evt supervisor.Event) {
			mu.Lock()
			got[name] = append(got[name], evt.AgentID)
			mu.Unlock()
		})
	}

	a := newAgent(t, "a", &fleetHooks{healthErr: errors.New("down")})
	require.NoError(t, r.Register(a))

	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got[EventAgentUnhealthy]) > 0
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, a.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a"}, got[EventAgentStarted])
	assert.Equal(t, []string{"a"}, got[EventAgentStopped])
	assert.Contains(t, got[EventAgentUnhealthy], "a")
}

func TestRegistry_UnregisterDetachesForwarding(t *testing.T) {
	r := New(nil)

	var mu sync.Mutex
	var started []string
	r.Subscribe(EventAgentStarted, func(evt supervisor.Event) {
		mu.Lock()
		started = append(started, evt.AgentID)
		mu.Unlock()
	})

	a := newAgent(t, "a", &fleetHooks{})
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Unregister("a"))

	require.NoError(t, a.Start(context.Background()))
	defer a.Stop(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, started, "unregistered agents must not emit registry events")
}
