package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/chatstore/internal/adapters/driven/storage/sqlite/schema"
	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/ports/driven"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// returningMinVersion is the first SQLite release with RETURNING support.
var returningMinVersion = [3]int{3, 35, 0}

var _ driven.Storage = (*Store)(nil)

// Config configures a Store.
type Config struct {
	// Path is the database file. If empty, defaults to ~/.chatstore/data/chat.db.
	Path string

	// Pragmas are applied verbatim and in order as "PRAGMA <directive>" on Open.
	// If empty, domain.DefaultPragmas is used.
	Pragmas []string

	// DisableReturning forces the read-then-delete path even when the
	// engine supports DELETE ... RETURNING.
	DisableReturning bool
}

// Store is a SQLite-backed driven.Storage.
// The zero value is not usable; create one with New.
type Store struct {
	cfg Config

	mu   sync.RWMutex
	conn *conn
}

// conn is the state that exists only while the store is open.
type conn struct {
	db        *sql.DB
	stmts     *statements
	returning bool
}

// New creates a store for the configured file. The file is not touched
// until Open is called.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.Path = filepath.Join(home, ".chatstore", "data", "chat.db")
	}
	if len(cfg.Pragmas) == 0 {
		cfg.Pragmas = domain.DefaultPragmas
	}
	cfg.Pragmas = append([]string(nil), cfg.Pragmas...)
	return &Store{cfg: cfg}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Open connects to the database, applies tuning pragmas and the schema, and
// prepares all statements. Calling Open on an open store is a no-op.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	c, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrOpen, err)
	}
	s.conn = c

	logger.Debug("storage opened at %s (returning=%t)", s.cfg.Path, c.returning)
	return nil
}

func (s *Store) open(ctx context.Context) (*conn, error) {
	if dir := filepath.Dir(s.cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Pragmas are per connection, so keep exactly one alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c := &conn{db: db}
	if err := c.init(ctx, s.cfg); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *conn) init(ctx context.Context, cfg Config) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	for _, directive := range cfg.Pragmas {
		directive = strings.TrimSpace(directive)
		if directive == "" || strings.Contains(directive, ";") {
			return fmt.Errorf("invalid pragma %q: %w", directive, domain.ErrInvalidInput)
		}
		if _, err := c.db.ExecContext(ctx, "PRAGMA "+directive); err != nil {
			return fmt.Errorf("applying pragma %q: %w", directive, err)
		}
	}

	if err := applySchema(ctx, c.db, schema.FS); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	if !cfg.DisableReturning {
		supported, err := probeReturning(ctx, c.db)
		if err != nil {
			return fmt.Errorf("probing engine version: %w", err)
		}
		c.returning = supported
	}

	stmts, err := prepareStatements(ctx, c.db, c.returning)
	if err != nil {
		return fmt.Errorf("preparing statements: %w", err)
	}
	c.stmts = stmts
	return nil
}

// Close releases the statements and the connection.
// Calling Close on a closed store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	c := s.conn
	s.conn = nil

	stmtErr := c.stmts.close()
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	if stmtErr != nil {
		return fmt.Errorf("closing statements: %w", stmtErr)
	}

	logger.Debug("storage closed at %s", s.cfg.Path)
	return nil
}

// SupportsReturning reports whether delete operations use DELETE ... RETURNING.
// It is false while the store is closed.
func (s *Store) SupportsReturning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil && s.conn.returning
}

// Stats returns row counts for every table.
func (s *Store) Stats(ctx context.Context) (*domain.Stats, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	var st domain.Stats
	if err := c.stmts.stats.QueryRowContext(ctx).Scan(
		&st.Chats, &st.Messages, &st.ConfirmedSteps, &st.Files); err != nil {
		return nil, wrapErr("counting rows", err)
	}
	return &st, nil
}

// acquire returns the open connection state and holds a read lock on it
// until release is called, so Close waits for in-flight operations.
func (s *Store) acquire() (c *conn, release func(), err error) {
	s.mu.RLock()
	if s.conn == nil {
		s.mu.RUnlock()
		return nil, nil, domain.ErrNotOpen
	}
	return s.conn, s.mu.RUnlock, nil
}

// applySchema runs every schema file inside one transaction.
func applySchema(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading schema directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, name := range files {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading schema %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing schema %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// probeReturning checks the engine version for RETURNING support.
func probeReturning(ctx context.Context, db *sql.DB) (bool, error) {
	var version string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return false, err
	}
	return versionAtLeast(version, returningMinVersion), nil
}

// versionAtLeast compares a dotted "major.minor.patch" version string.
// Unparseable components count as zero.
func versionAtLeast(version string, minimum [3]int) bool {
	var got [3]int
	for i, part := range strings.SplitN(version, ".", 3) {
		fmt.Sscanf(part, "%d", &got[i]) //nolint:errcheck // zero on failure
	}
	for i := range got {
		if got[i] != minimum[i] {
			return got[i] > minimum[i]
		}
	}
	return true
}
