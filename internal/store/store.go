package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/authz"
	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (records + index_entries)
const currentSchemaVersion = 1

// Store is the authorization-enforcing record store. All mutations are
// serialized through a single writer; reads go straight to SQLite.
//
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	db       *sql.DB
	registry *schema.Registry
	issuer   *auth.Issuer
	logger   *slog.Logger
	now      func() time.Time

	// SQLite allows one writer; the mutex keeps the evaluate-then-persist
	// sequence atomic with respect to other mutations.
	writeMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger for mutation and denial events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithIssuer overrides the challenge issuer, for deterministic tests.
func WithIssuer(issuer *auth.Issuer) Option {
	return func(s *Store) { s.issuer = issuer }
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens a SQLite database at the given path and binds it
// to the compiled registry.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, registry *schema.Registry, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:       db,
		registry: registry,
		issuer:   auth.NewIssuer(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Registry returns the compiled registry the store enforces.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

// IssueChallenge hands out a fresh single-use challenge. The caller
// signs the nonce and sends the envelope back with a mutating call.
func (s *Store) IssueChallenge() auth.Challenge {
	return s.issuer.Issue()
}

// authenticate retires the nonce and recovers the caller address from
// the envelope. The recovered address is the only identity the rules
// ever see.
func (s *Store) authenticate(signed auth.SignedChallenge) (string, error) {
	if err := s.issuer.Consume(signed.Nonce); err != nil {
		return "", err
	}
	caller, err := signed.RecoverCaller()
	if err != nil {
		return "", fmt.Errorf("recover caller: %w", err)
	}
	return caller, nil
}

// resolver adapts the store into the rule evaluator's reference lookup.
// Missing records resolve to (nil, nil): a dangling reference reads as
// "no value", not an error.
func (s *Store) resolver(ctx context.Context) authz.Resolver {
	return func(ref record.Ref) (*record.Record, error) {
		return s.fetch(ctx, ref.Collection, ref.ID)
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
