package catalogdb

import (
	"context"
	"database/sql"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateComposite(ctx context.Context, c *catalogmodel.Composite) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO composites (id, job_id, recipe, satellite, sector, capture_time, status, file_path, file_size)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING created_at`,
		c.ID, nullableString(c.JobID), c.Recipe, c.Satellite, c.Sector, c.CaptureTime, c.Status, c.FilePath, c.FileSize).Scan(&c.CreatedAt)
}

func (s *PostgresStore) UpdateComposite(ctx context.Context, c *catalogmodel.Composite) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE composites SET status=$2, file_path=$3, file_size=$4, completed_at=$5 WHERE id=$1`,
		c.ID, c.Status, c.FilePath, c.FileSize, c.CompletedAt)
	return err
}

func (s *PostgresStore) GetComposite(ctx context.Context, id string) (*catalogmodel.Composite, error) {
	c := &catalogmodel.Composite{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, coalesce(job_id::text,''), recipe, satellite, sector, capture_time, status, file_path, file_size, created_at, completed_at
		FROM composites WHERE id=$1`, id).Scan(&c.ID, &c.JobID, &c.Recipe, &c.Satellite, &c.Sector, &c.CaptureTime,
		&c.Status, &c.FilePath, &c.FileSize, &c.CreatedAt, &c.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) CreateAnimation(ctx context.Context, a *catalogmodel.Animation) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO animations (id, job_id, format, frame_count, status, file_path, file_size)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING created_at`,
		a.ID, nullableString(a.JobID), a.Format, a.FrameCount, a.Status, a.FilePath, a.FileSize).Scan(&a.CreatedAt)
}

func (s *PostgresStore) UpdateAnimation(ctx context.Context, a *catalogmodel.Animation) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE animations SET status=$2, file_path=$3, file_size=$4, frame_count=$5, completed_at=$6 WHERE id=$1`,
		a.ID, a.Status, a.FilePath, a.FileSize, a.FrameCount, a.CompletedAt)
	return err
}

func (s *PostgresStore) GetAnimation(ctx context.Context, id string) (*catalogmodel.Animation, error) {
	a := &catalogmodel.Animation{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, coalesce(job_id::text,''), format, frame_count, status, file_path, file_size, created_at, completed_at
		FROM animations WHERE id=$1`, id).Scan(&a.ID, &a.JobID, &a.Format, &a.FrameCount, &a.Status, &a.FilePath,
		&a.FileSize, &a.CreatedAt, &a.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return a, err
}
