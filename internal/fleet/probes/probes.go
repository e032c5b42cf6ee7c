// ABOUTME: Built-in probe agents: HTTP, TCP, and exec health probes.
// ABOUTME: Each implements supervisor.Hooks so warden has real workers to supervise.

package probes

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/wardenhq/warden/internal/supervisor"
)

// HTTPProbe probes an HTTP endpoint. 2xx/3xx responses are healthy, 5xx are
// unhealthy, anything else is degraded.
type HTTPProbe struct {
	target string
	client *http.Client
}

// NewHTTP creates an HTTP probe for the given URL.
func NewHTTP(target string, timeout time.Duration) (*HTTPProbe, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid probe URL %q", target)
	}
	return &HTTPProbe{
		target: target,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Start is a no-op; the probe holds no long-lived resources beyond its client.
func (p *HTTPProbe) Start(ctx context.Context) error { return nil }

// Stop releases any idle connections held by the client.
func (p *HTTPProbe) Stop(ctx context.Context) error {
	p.client.CloseIdleConnections()
	return nil
}

// HealthCheck issues a GET against the target.
func (p *HTTPProbe) HealthCheck(ctx context.Context) (supervisor.HealthCheck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target, nil)
	if err != nil {
		return supervisor.HealthCheck{}, err
	}

	began := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return supervisor.HealthCheck{
			Status:  supervisor.HealthUnhealthy,
			Message: err.Error(),
		}, nil
	}
	resp.Body.Close()

	hc := supervisor.HealthCheck{
		Details: map[string]any{
			"status_code": resp.StatusCode,
			"latency_ms":  time.Since(began).Milliseconds(),
		},
	}
	switch {
	case resp.StatusCode < 400:
		hc.Status = supervisor.HealthHealthy
	case resp.StatusCode >= 500:
		hc.Status = supervisor.HealthUnhealthy
		hc.Message = fmt.Sprintf("target returned %s", resp.Status)
	default:
		hc.Status = supervisor.HealthDegraded
		hc.Message = fmt.Sprintf("target returned %s", resp.Status)
	}
	return hc, nil
}

// TCPProbe probes a TCP address by dialing it.
type TCPProbe struct {
	addr    string
	timeout time.Duration
}

// NewTCP creates a TCP probe for the given host:port address.
func NewTCP(addr string, timeout time.Duration) (*TCPProbe, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("invalid probe address %q: %w", addr, err)
	}
	return &TCPProbe{addr: addr, timeout: timeout}, nil
}

func (p *TCPProbe) Start(ctx context.Context) error { return nil }
func (p *TCPProbe) Stop(ctx context.Context) error  { return nil }

// HealthCheck dials the target address.
func (p *TCPProbe) HealthCheck(ctx context.Context) (supervisor.HealthCheck, error) {
	began := time.Now()
	conn, err := (&net.Dialer{Timeout: p.timeout}).DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return supervisor.HealthCheck{
			Status:  supervisor.HealthUnhealthy,
			Message: err.Error(),
		}, nil
	}
	conn.Close()

	return supervisor.HealthCheck{
		Status: supervisor.HealthHealthy,
		Details: map[string]any{
			"latency_ms": time.Since(began).Milliseconds(),
		},
	}, nil
}

// ExecProbe runs a command; exit code 0 is healthy, anything else unhealthy.
type ExecProbe struct {
	command []string
	timeout time.Duration
}

// NewExec creates an exec probe from a space-separated command line.
func NewExec(command string, timeout time.Duration) (*ExecProbe, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty probe command")
	}
	return &ExecProbe{command: fields, timeout: timeout}, nil
}

func (p *ExecProbe) Start(ctx context.Context) error { return nil }
func (p *ExecProbe) Stop(ctx context.Context) error  { return nil }

// HealthCheck runs the command with the probe timeout applied.
func (p *ExecProbe) HealthCheck(ctx context.Context) (supervisor.HealthCheck, error) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.command[0], p.command[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := err.Error()
		if len(out) > 0 {
			msg = strings.TrimSpace(string(out))
		}
		return supervisor.HealthCheck{
			Status:  supervisor.HealthUnhealthy,
			Message: msg,
		}, nil
	}

	return supervisor.HealthCheck{Status: supervisor.HealthHealthy}, nil
}
