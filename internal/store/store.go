// Package store implements the relational catalog store: an entity table of
// courses and an edge table of prerequisite pairs.
//
// Every operation opens its own connection and closes it before returning.
// The sqlite driver (modernc.org/sqlite) is the default; the pgx driver
// (github.com/jackc/pgx/v5/stdlib) targets PostgreSQL with the same schema.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

// Store opens the configured database on demand.
type Store struct {
	driver string
	dsn    string
	dir    string // created before opening a default sqlite file
	log    zerolog.Logger

	// openDB is sql.Open; tests substitute a mock connection.
	openDB func(driver, dsn string) (*sql.DB, error)
}

// New returns a Store for cfg. With the sqlite driver and no DSN the
// database lives at types.DefaultDBFile inside dataDir.
func New(cfg types.StoreConfig, dataDir string, log zerolog.Logger) *Store {
	s := &Store{
		driver: cfg.Driver,
		dsn:    cfg.DSN,
		log:    log.With().Str("driver", cfg.Driver).Logger(),
		openDB: sql.Open,
	}
	if s.driver == "" {
		s.driver = types.DefaultDriver
	}
	if s.driver == types.DriverSQLite && s.dsn == "" {
		if dataDir == "" {
			dataDir = "."
		}
		s.dir = dataDir
		s.dsn = filepath.Join(dataDir, types.DefaultDBFile)
	}
	return s
}

// DSN returns the data source name the store opens.
func (s *Store) DSN() string {
	return s.dsn
}

// Init opens the store and creates both tables if they are missing.
func (s *Store) Init(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return s.ensureSchema(ctx, db)
}

// open connects and, for sqlite, turns on foreign-key enforcement. The pragma
// is per connection, so the pool is capped at one.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating data dir: %v", types.ErrSourceUnavailable, err)
		}
	}

	db, err := s.openDB(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening store: %v", types.ErrSourceUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to store: %v", types.ErrSourceUnavailable, err)
	}

	if s.driver == types.DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, pragmaForeignKeys); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: enabling foreign keys: %v", types.ErrSourceUnavailable, err)
		}
	}
	return db, nil
}

// q rewrites ? placeholders to $n for the pgx driver.
func (s *Store) q(query string) string {
	if s.driver != types.DriverPgx {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// authorize rejects non-admin sessions before any store access.
func (s *Store) authorize(session types.Session, op string) error {
	if !session.IsAdmin() {
		s.log.Warn().Str("op", op).Str("user", session.User).Msg("mutation rejected")
		return types.ErrUnauthorized
	}
	return nil
}
