package catalogdb

import (
	"context"
	"database/sql"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateShareLink(ctx context.Context, sl *catalogmodel.ShareLink) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO share_links (token, frame_id, expires_at) VALUES ($1,$2,$3) RETURNING created_at`,
		sl.Token, sl.FrameID, sl.ExpiresAt).Scan(&sl.CreatedAt)
}

func (s *PostgresStore) GetShareLink(ctx context.Context, token string) (*catalogmodel.ShareLink, error) {
	sl := &catalogmodel.ShareLink{}
	err := s.db.QueryRowContext(ctx, `SELECT token, frame_id, expires_at, created_at FROM share_links WHERE token=$1`, token).
		Scan(&sl.Token, &sl.FrameID, &sl.ExpiresAt, &sl.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return sl, err
}
