package catalogdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateCropPreset(ctx context.Context, p *catalogmodel.CropPreset) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO crop_presets (id, name, x, y, width, height) VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at`,
		p.ID, p.Name, p.X, p.Y, p.Width, p.Height).Scan(&p.CreatedAt)
	return wrapConflict(err)
}

func (s *PostgresStore) ListCropPresets(ctx context.Context) ([]*catalogmodel.CropPreset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, x, y, width, height, created_at FROM crop_presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.CropPreset
	for rows.Next() {
		p := &catalogmodel.CropPreset{}
		if err := rows.Scan(&p.ID, &p.Name, &p.X, &p.Y, &p.Width, &p.Height, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateFetchPreset(ctx context.Context, p *catalogmodel.FetchPreset) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO fetch_presets (id, name, satellite, sector, band) VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		p.ID, p.Name, p.Satellite, p.Sector, p.Band).Scan(&p.CreatedAt)
	return wrapConflict(err)
}

func (s *PostgresStore) GetFetchPreset(ctx context.Context, id string) (*catalogmodel.FetchPreset, error) {
	p := &catalogmodel.FetchPreset{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name, satellite, sector, band, created_at FROM fetch_presets WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Satellite, &p.Sector, &p.Band, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) ListFetchPresets(ctx context.Context) ([]*catalogmodel.FetchPreset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, satellite, sector, band, created_at FROM fetch_presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.FetchPreset
	for rows.Next() {
		p := &catalogmodel.FetchPreset{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Satellite, &p.Sector, &p.Band, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateAnimationPreset(ctx context.Context, p *catalogmodel.AnimationPreset) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO animation_presets (id, name, format, quality, fps, loop_style, scale)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING created_at`,
		p.ID, p.Name, p.Format, p.Quality, p.FPS, p.LoopStyle, p.Scale).Scan(&p.CreatedAt)
	return wrapConflict(err)
}

func (s *PostgresStore) ListAnimationPresets(ctx context.Context) ([]*catalogmodel.AnimationPreset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, format, quality, fps, loop_style, scale, created_at FROM animation_presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.AnimationPreset
	for rows.Next() {
		p := &catalogmodel.AnimationPreset{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Format, &p.Quality, &p.FPS, &p.LoopStyle, &p.Scale, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeletePreset(ctx context.Context, kind catalogmodel.PresetKind, id string) error {
	var table string
	switch kind {
	case catalogmodel.PresetKindCrop:
		table = "crop_presets"
	case catalogmodel.PresetKindFetch:
		table = "fetch_presets"
	case catalogmodel.PresetKindAnimation:
		table = "animation_presets"
	default:
		return fmt.Errorf("unknown preset kind %q", kind)
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, table), id)
	return err
}
