package catalogdb

import (
	"context"
	"database/sql"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateCollection(ctx context.Context, c *catalogmodel.Collection) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO collections (id, name) VALUES ($1,$2) RETURNING created_at, updated_at`,
		c.ID, c.Name).Scan(&c.CreatedAt, &c.UpdatedAt)
	return wrapConflict(err)
}

func (s *PostgresStore) GetOrCreateCollectionByName(ctx context.Context, name string) (*catalogmodel.Collection, error) {
	c := &catalogmodel.Collection{}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO collections (id, name) VALUES (gen_random_uuid(), $1)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id, name, created_at, updated_at`, name)
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) GetCollection(ctx context.Context, id string) (*catalogmodel.Collection, error) {
	c := &catalogmodel.Collection{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM collections WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) ListCollections(ctx context.Context) ([]*catalogmodel.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM collections ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.Collection
	for rows.Next() {
		c := &catalogmodel.Collection{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteCollection(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id=$1`, id)
	return err
}

func (s *PostgresStore) AddFramesToCollection(ctx context.Context, collectionID string, frameIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, id := range frameIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collection_frames (collection_id, frame_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			collectionID, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) RemoveFrameFromCollection(ctx context.Context, collectionID, frameID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collection_frames WHERE collection_id=$1 AND frame_id=$2`, collectionID, frameID)
	return err
}

// ListProtectedFrameIDs returns every frame id that belongs to at least
// one collection — the protect_collections input to the retention engine
// (§4.6).
func (s *PostgresStore) ListProtectedFrameIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT frame_id FROM collection_frames`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
