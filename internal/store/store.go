// ABOUTME: Store interface and data types for warden persistence.
// ABOUTME: Defines the supervision event journal and API token records.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateToken is returned when creating a token whose ID already exists.
var ErrDuplicateToken = errors.New("token already exists")

// EventRecord is a persisted supervision event. The journal is an audit
// trail of what the fleet did, not a recovery mechanism: agent state is
// never restored from it.
type EventRecord struct {
	ID            string
	AgentID       string
	Name          string // started, stopped, unhealthy, stateChanged, ...
	CorrelationID string
	OldState      string
	NewState      string
	HealthStatus  string
	Message       string
	CreatedAt     time.Time
}

// APIToken is a static API credential. Only the bcrypt hash of the secret
// half is stored; the full token is shown once at creation.
type APIToken struct {
	ID         string
	Name       string
	SecretHash string
	CreatedAt  time.Time
}

// Store is the persistence interface for the event journal and API tokens.
type Store interface {
	// SaveEvent appends a supervision event to the journal.
	SaveEvent(ctx context.Context, event *EventRecord) error
	// ListEvents returns the most recent events, newest first.
	ListEvents(ctx context.Context, limit int) ([]*EventRecord, error)
	// ListAgentEvents returns the most recent events for one agent, newest first.
	ListAgentEvents(ctx context.Context, agentID string, limit int) ([]*EventRecord, error)

	// CreateToken stores a new API token record.
	CreateToken(ctx context.Context, token *APIToken) error
	// GetToken returns the token with the given ID, or ErrNotFound.
	GetToken(ctx context.Context, id string) (*APIToken, error)
	// ListTokens returns all token records, newest first.
	ListTokens(ctx context.Context) ([]*APIToken, error)
	// CountTokens returns the number of stored tokens.
	CountTokens(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}
