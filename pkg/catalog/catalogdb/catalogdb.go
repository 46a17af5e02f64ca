// Package catalogdb is the Postgres implementation of catalog.Store,
// built on database/sql and lib/pq the way storj-storj's satellite
// services talk to their own Postgres-backed stores.
package catalogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/log"
)

// uniqueViolationCode is Postgres' SQLSTATE for a unique-constraint
// violation (23505).
const uniqueViolationCode = "23505"

// wrapConflict translates a unique-constraint violation into
// catalog.ErrConflict so the 409 branches in pkg/httpapi that check for
// it (collections, tags, presets) are reachable; any other error passes
// through unchanged.
func wrapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return catalog.ErrConflict
	}
	return err
}

// PostgresStore implements catalog.Store.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to Postgres and ensures the schema exists. Migrations are
// expected to run out-of-band (§4.1); EnsureSchema only fills in tables
// that are missing so a fresh environment still boots, logging a warning
// rather than failing when it has to create anything.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	tables := []string{"jobs", "job_logs", "goes_frames", "images", "collections", "collection_frames",
		"tags", "frame_tags", "crop_presets", "fetch_presets", "animation_presets", "fetch_schedules",
		"cleanup_rules", "composites", "animations", "share_links", "notifications", "settings"}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(DISTINCT table_name) FROM information_schema.tables WHERE table_name = ANY($1)`,
		pq.Array(tables)).Scan(&n); err != nil {
		return err
	}
	if n == len(tables) {
		return nil
	}
	log.Logger.Warn().Msg("catalog schema missing, creating from built-in fallback DDL (migrations should normally own this)")
	_, err := s.db.ExecContext(ctx, schemaDDL)
	return err
}
