package catalogdb

import (
	"context"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateTag(ctx context.Context, t *catalogmodel.Tag) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (id, name, color) VALUES ($1,$2,$3) RETURNING created_at`,
		t.ID, t.Name, t.Color).Scan(&t.CreatedAt)
	return wrapConflict(err)
}

func (s *PostgresStore) ListTags(ctx context.Context) ([]*catalogmodel.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.Tag
	for rows.Next() {
		t := &catalogmodel.Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteTag(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id=$1`, id)
	return err
}

func (s *PostgresStore) TagFrame(ctx context.Context, frameID, tagID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frame_tags (frame_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`, frameID, tagID)
	return err
}

func (s *PostgresStore) UntagFrame(ctx context.Context, frameID, tagID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM frame_tags WHERE frame_id=$1 AND tag_id=$2`, frameID, tagID)
	return err
}
