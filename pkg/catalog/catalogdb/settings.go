package catalogdb

import (
	"context"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) GetSettings(ctx context.Context) (catalogmodel.Settings, error) {
	var set catalogmodel.Settings
	err := s.db.QueryRowContext(ctx, `SELECT max_frames_per_fetch, webhook_url FROM settings WHERE id=1`).
		Scan(&set.MaxFramesPerFetch, &set.WebhookURL)
	return set, err
}

func (s *PostgresStore) UpdateSettings(ctx context.Context, set catalogmodel.Settings) error {
	set.MaxFramesPerFetch = catalogmodel.ClampMaxFramesPerFetch(set.MaxFramesPerFetch)
	_, err := s.db.ExecContext(ctx, `
		UPDATE settings SET max_frames_per_fetch=$1, webhook_url=$2 WHERE id=1`,
		set.MaxFramesPerFetch, set.WebhookURL)
	return err
}
