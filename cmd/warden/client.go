// ABOUTME: Client subcommands that query a running warden daemon over HTTP.
// ABOUTME: Implements the health and agents commands.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/supervisor"
)

// apiGet issues a GET against the daemon's HTTP API and returns the body.
// Non-2xx responses other than allowedStatus are errors.
func apiGet(ctx context.Context, path string, allowedStatus int) ([]byte, int, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, 0, fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := "http://" + cfg.Server.HTTPAddr + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("is warden running? %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != allowedStatus {
		return nil, resp.StatusCode, fmt.Errorf("daemon returned %s", resp.Status)
	}
	return body, resp.StatusCode, nil
}

func runHealth(ctx context.Context) error {
	body, status, err := apiGet(ctx, "/health", http.StatusServiceUnavailable)
	if err != nil {
		return err
	}

	var health struct {
		Status string `json:"status"`
		Agents []struct {
			ID     string `json:"id"`
			State  string `json:"state"`
			Health string `json:"health"`
		} `json:"agents"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("parsing health response: %w", err)
	}

	if status == http.StatusOK {
		color.Green("warden: %s", health.Status)
	} else {
		color.Red("warden: %s", health.Status)
	}
	for _, a := range health.Agents {
		fmt.Printf("  %-24s %-10s %s\n", a.ID, a.State, a.Health)
	}
	return nil
}

func runAgents(ctx context.Context) error {
	body, _, err := apiGet(ctx, "/agents", 0)
	if err != nil {
		return err
	}

	var agents []supervisor.Info
	if err := json.Unmarshal(body, &agents); err != nil {
		return fmt.Errorf("parsing agents response: %w", err)
	}

	if len(agents) == 0 {
		fmt.Println("No agents registered.")
		return nil
	}

	fmt.Printf("%-24s %-24s %-10s %-10s %s\n", "ID", "NAME", "STATE", "HEALTH", "STARTED")
	for _, a := range agents {
		started := "-"
		if a.StartedAt != nil {
			started = a.StartedAt.Format(time.RFC3339)
		}
		stateStr := a.State.String()
		switch a.State {
		case supervisor.StateRunning:
			stateStr = color.GreenString(stateStr)
		case supervisor.StateError:
			stateStr = color.RedString(stateStr)
		}
		fmt.Printf("%-24s %-24s %-10s %-10s %s\n",
			a.ID, a.Name, stateStr, string(a.Health.Status), started)
	}
	return nil
}
