// ABOUTME: Tests for the built-in probe agents.
// ABOUTME: Uses httptest servers and local listeners as probe targets.

package probes

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/supervisor"
)

func TestHTTPProbe_Statuses(t *testing.T) {
	tests := []struct {
		name string
		code int
		want supervisor.HealthStatus
	}{
		{"ok", http.StatusOK, supervisor.HealthHealthy},
		{"redirect-ish", http.StatusNoContent, supervisor.HealthHealthy},
		{"client error", http.StatusForbidden, supervisor.HealthDegraded},
		{"server error", http.StatusInternalServerError, supervisor.HealthUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			p, err := NewHTTP(srv.URL, time.Second)
			require.NoError(t, err)

			hc, err := p.HealthCheck(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, hc.Status)
			assert.Equal(t, tt.code, hc.Details["status_code"])
		})
	}
}

func TestHTTPProbe_UnreachableTarget(t *testing.T) {
	p, err := NewHTTP("http://127.0.0.1:1", 200*time.Millisecond)
	require.NoError(t, err)

	hc, err := p.HealthCheck(context.Background())
	require.NoError(t, err, "connection failures are data, not errors")
	assert.Equal(t, supervisor.HealthUnhealthy, hc.Status)
	assert.NotEmpty(t, hc.Message)
}

func TestHTTPProbe_InvalidURL(t *testing.T) {
	_, err := NewHTTP("not a url", time.Second)
	assert.Error(t, err)
}

func TestTCPProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p, err := NewTCP(ln.Addr().String(), time.Second)
	require.NoError(t, err)

	hc, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, supervisor.HealthHealthy, hc.Status)
}

func TestTCPProbe_ClosedPort(t *testing.T) {
	p, err := NewTCP("127.0.0.1:1", 200*time.Millisecond)
	require.NoError(t, err)

	hc, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, supervisor.HealthUnhealthy, hc.Status)
}

func TestTCPProbe_InvalidAddr(t *testing.T) {
	_, err := NewTCP("no-port", time.Second)
	assert.Error(t, err)
}

func TestExecProbe(t *testing.T) {
	p, err := NewExec("true", time.Second)
	require.NoError(t, err)
	hc, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, supervisor.HealthHealthy, hc.Status)

	p, err = NewExec("false", time.Second)
	require.NoError(t, err)
	hc, err = p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, supervisor.HealthUnhealthy, hc.Status)
}

func TestExecProbe_EmptyCommand(t *testing.T) {
	_, err := NewExec("   ", time.Second)
	assert.Error(t, err)
}
