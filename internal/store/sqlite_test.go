// ABOUTME: Tests for the SQLite store.
// ABOUTME: Covers journal append/list ordering and token CRUD.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "warden.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveAndListEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	for i, name := range []string{"stateChanged", "started", "unhealthy"} {
		require.NoError(t, s.SaveEvent(ctx, &EventRecord{
			ID:            string(rune('a' + i)),
			AgentID:       "agent-1",
			Name:          name,
			CorrelationID: "corr-" + name,
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.SaveEvent(ctx, &EventRecord{
		ID:            "z",
		AgentID:       "agent-2",
		Name:          "started",
		CorrelationID: "corr-z",
		CreatedAt:     base.Add(10 * time.Second),
	}))

	events, err := s.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "z", events[0].ID, "newest first")

	agentEvents, err := s.ListAgentEvents(ctx, "agent-1", 10)
	require.NoError(t, err)
	require.Len(t, agentEvents, 3)
	assert.Equal(t, "unhealthy", agentEvents[0].Name)

	limited, err := s.ListEvents(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteStore_EventDefaultsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEvent(ctx, &EventRecord{
		ID: "e1", AgentID: "a", Name: "started", CorrelationID: "c",
	}))

	events, err := s.ListEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].CreatedAt.IsZero())
}

func TestSQLiteStore_Tokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tok := &APIToken{ID: "tok1", Name: "ci", SecretHash: "$2a$10$hash"}
	require.NoError(t, s.CreateToken(ctx, tok))

	err := s.CreateToken(ctx, &APIToken{ID: "tok1", Name: "dup", SecretHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateToken)

	got, err := s.GetToken(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, "ci", got.Name)
	assert.Equal(t, "$2a$10$hash", got.SecretHash)

	_, err = s.GetToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	tokens, err := s.ListTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)

	n, err := s.CountTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
