// Package store provides persistence for warden.
//
// Two concerns live here: the supervision event journal (an append-only
// audit trail of lifecycle and health events) and API token records (static
// credentials for the HTTP surface, stored as bcrypt hashes).
//
// The journal is deliberately not a recovery mechanism. Agent state is never
// restored from it across restarts; it exists so operators can answer "what
// did the fleet do and when".
//
// The only implementation is SQLiteStore, backed by modernc.org/sqlite with
// WAL mode and automatic schema creation.
package store
