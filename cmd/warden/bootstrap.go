// ABOUTME: The init and bootstrap subcommands for first-time setup.
// ABOUTME: init writes starter config files; bootstrap mints API tokens.

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/wardenhq/warden/internal/auth"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/store"
)

const starterConfig = `# warden daemon configuration
server:
  http_addr: "127.0.0.1:8420"

database:
  path: "%s"

auth:
  jwt_secret: "%s"

fleet:
  manifest: "%s"
  default_health_interval: "30s"
  default_timeout: "10s"

logging:
  level: "info"
  format: "text"
`

const starterManifest = `# warden fleet manifest
#
# Each [[agents]] block declares one supervised agent. The type field
# selects the health probe: http, tcp, or exec.

[[agents]]
id = "example-web"
name = "Example Web Service"
version = "1.0.0"
type = "http"
target = "http://127.0.0.1:8080/healthz"
enabled = false
health_interval = "15s"
timeout = "5s"
`

func runInit() error {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	dataDir := getDataPath()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	secret, err := generateJWTSecret()
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(filepath.Dir(configPath), "fleet.toml")
	content := fmt.Sprintf(starterConfig,
		filepath.Join(dataDir, "warden.db"), secret, manifestPath)
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		if err := os.WriteFile(manifestPath, []byte(starterManifest), 0o600); err != nil {
			return fmt.Errorf("writing fleet manifest: %w", err)
		}
	}

	color.Green("Created %s", configPath)
	color.Green("Created %s", manifestPath)
	fmt.Println()
	fmt.Println("Edit the fleet manifest to declare your agents, then run:")
	fmt.Println("  warden serve")
	return nil
}

func runBootstrap(ctx context.Context) error {
	name := parseNameFlag(os.Args[2:])
	if name == "" {
		return fmt.Errorf("usage: warden bootstrap --name NAME")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config (run 'warden init' first): %w", err)
	}

	logger := setupLogger(cfg.Logging)

	db, err := store.NewSQLiteStore(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	id := uuid.NewString()
	token, hash, err := auth.GenerateStaticToken(id)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	if err := db.CreateToken(ctx, &store.APIToken{
		ID:         id,
		Name:       name,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	fmt.Printf("Created API token %q\n\n", name)
	color.Yellow("  %s", token)
	fmt.Println()
	fmt.Println("Store it now. The secret is hashed at rest and cannot be shown again.")
	return nil
}

// parseNameFlag extracts --name/-n from args, supporting both the separate
// and = argument forms.
func parseNameFlag(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--name" || arg == "-n":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--name="):
			return strings.TrimPrefix(arg, "--name=")
		case strings.HasPrefix(arg, "-n="):
			return strings.TrimPrefix(arg, "-n=")
		}
	}
	return ""
}

func generateJWTSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
