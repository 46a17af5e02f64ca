package catalogdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

var frameSortColumns = map[catalogmodel.SortKey]string{
	catalogmodel.SortCaptureTime: "capture_time",
	catalogmodel.SortFileSize:    "file_size",
	catalogmodel.SortSatellite:   "satellite",
	catalogmodel.SortCreatedAt:   "created_at",
}

// CreateFramesBatch persists frames plus their legacy Image mirror rows
// and auto-collection membership in one transaction (§4.1, §4.3 step 4).
// The collection lookup is idempotent by name.
func (s *PostgresStore) CreateFramesBatch(ctx context.Context, frames []*catalogmodel.GoesFrame, autoCollectionName string) error {
	if len(frames) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var collectionID string
	if autoCollectionName != "" {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO collections (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = excluded.name
			RETURNING id`, uuid.NewString(), autoCollectionName)
		if err := row.Scan(&collectionID); err != nil {
			return fmt.Errorf("get-or-create auto collection: %w", err)
		}
	}

	for _, f := range frames {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO goes_frames (id, satellite, sector, band, capture_time, file_path, file_size, width, height, thumbnail_path, source_job_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (satellite, sector, band, capture_time) DO UPDATE SET
				file_path=excluded.file_path, file_size=excluded.file_size, width=excluded.width,
				height=excluded.height, thumbnail_path=excluded.thumbnail_path, source_job_id=excluded.source_job_id`,
			f.ID, f.Satellite, f.Sector, f.Band, f.CaptureTime, f.FilePath, f.FileSize, f.Width, f.Height,
			f.ThumbnailPath, nullableString(f.SourceJobID), f.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert frame %s: %w", f.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO images (id, frame_id, path, width, height, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
			uuid.NewString(), f.ID, f.FilePath, f.Width, f.Height, f.CreatedAt); err != nil {
			return fmt.Errorf("insert legacy image row for frame %s: %w", f.ID, err)
		}

		if collectionID != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO collection_frames (collection_id, frame_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
				collectionID, f.ID); err != nil {
				return fmt.Errorf("add frame %s to collection: %w", f.ID, err)
			}
		}
	}

	return tx.Commit()
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func (s *PostgresStore) GetFrame(ctx context.Context, id string) (*catalogmodel.GoesFrame, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, satellite, sector, band, capture_time, file_path, file_size, width, height, thumbnail_path, coalesce(source_job_id::text, ''), created_at
		FROM goes_frames WHERE id = $1`, id)
	f, err := scanFrame(row)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return f, err
}

func (s *PostgresStore) ListFrames(ctx context.Context, filter catalogmodel.FrameFilter, page catalogmodel.FramePage) (catalog.FrameListResult, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	add := func(clause string, val interface{}) {
		args = append(args, val)
		where += fmt.Sprintf(" AND %s $%d", clause, len(args))
	}
	if filter.Satellite != nil {
		add("satellite =", *filter.Satellite)
	}
	if filter.Sector != nil {
		add("sector =", *filter.Sector)
	}
	if filter.Band != nil {
		add("band =", *filter.Band)
	}
	if filter.StartDate != nil {
		add("capture_time >=", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("capture_time <=", *filter.EndDate)
	}
	if filter.CollectionID != "" {
		args = append(args, filter.CollectionID)
		where += fmt.Sprintf(" AND id IN (SELECT frame_id FROM collection_frames WHERE collection_id = $%d)", len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where += fmt.Sprintf(" AND id IN (SELECT frame_id FROM frame_tags ft JOIN tags t ON t.id = ft.tag_id WHERE t.name = $%d)", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM goes_frames "+where, args...).Scan(&total); err != nil {
		return catalog.FrameListResult{}, err
	}

	sortCol, ok := frameSortColumns[page.SortKey]
	if !ok {
		sortCol = "capture_time"
	}
	dir := "ASC"
	if page.SortDir == catalogmodel.SortDesc {
		dir = "DESC"
	}
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	p := page.Page
	if p <= 0 {
		p = 1
	}
	offset := (p - 1) * limit
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT id, satellite, sector, band, capture_time, file_path, file_size, width, height, thumbnail_path, coalesce(source_job_id::text, ''), created_at
		FROM goes_frames %s ORDER BY %s %s LIMIT $%d OFFSET $%d`, where, sortCol, dir, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return catalog.FrameListResult{}, err
	}
	defer rows.Close()

	var frames []*catalogmodel.GoesFrame
	for rows.Next() {
		f, err := scanFrame(rows)
		if err != nil {
			return catalog.FrameListResult{}, err
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return catalog.FrameListResult{}, err
	}
	return catalog.FrameListResult{Frames: frames, TotalCount: total}, nil
}

func (s *PostgresStore) ListFrameIDsForRetention(ctx context.Context, createdBefore time.Time, excludeProtected bool) ([]string, error) {
	query := `SELECT id FROM goes_frames WHERE created_at < $1`
	if excludeProtected {
		query += ` AND id NOT IN (SELECT frame_id FROM collection_frames)`
	}
	return s.queryIDs(ctx, query, createdBefore)
}

func (s *PostgresStore) ListAllFrameIDsOrderedByAge(ctx context.Context, excludeProtected bool) ([]string, error) {
	query := `SELECT id FROM goes_frames`
	if excludeProtected {
		query += ` WHERE id NOT IN (SELECT frame_id FROM collection_frames)`
	}
	query += ` ORDER BY created_at ASC`
	return s.queryIDs(ctx, query)
}

func (s *PostgresStore) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) DeleteFrame(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM goes_frames WHERE id=$1`, id)
	return err
}

func (s *PostgresStore) DeleteFramesByJobID(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM goes_frames WHERE source_job_id=$1`, jobID)
	return err
}

func (s *PostgresStore) FrameStats(ctx context.Context) (catalogmodel.FrameStats, error) {
	var stats catalogmodel.FrameStats
	if err := s.db.QueryRowContext(ctx, `SELECT count(*), coalesce(sum(file_size),0) FROM goes_frames`).Scan(&stats.TotalFrames, &stats.TotalBytes); err != nil {
		return stats, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT satellite, band, coalesce(sum(file_size),0), count(*) FROM goes_frames GROUP BY satellite, band`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var t catalogmodel.SatBandTotal
		if err := rows.Scan(&t.Satellite, &t.Band, &t.FileSize, &t.Count); err != nil {
			return stats, err
		}
		stats.BySatBand = append(stats.BySatBand, t)
	}
	return stats, rows.Err()
}

func (s *PostgresStore) TotalFrameBytes(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT coalesce(sum(file_size),0) FROM goes_frames`).Scan(&total)
	return total, err
}

func (s *PostgresStore) ListCaptureTimes(ctx context.Context, satellite *catalogmodel.Satellite, sector *catalogmodel.Sector, band *catalogmodel.Band) ([]time.Time, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if satellite != nil {
		args = append(args, *satellite)
		where += fmt.Sprintf(" AND satellite = $%d", len(args))
	}
	if sector != nil {
		args = append(args, *sector)
		where += fmt.Sprintf(" AND sector = $%d", len(args))
	}
	if band != nil {
		args = append(args, *band)
		where += fmt.Sprintf(" AND band = $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, "SELECT capture_time FROM goes_frames "+where+" ORDER BY capture_time ASC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (s *PostgresStore) NearestFrame(ctx context.Context, satellite catalogmodel.Satellite, sector catalogmodel.Sector, band catalogmodel.Band, at time.Time) (*catalogmodel.GoesFrame, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, satellite, sector, band, capture_time, file_path, file_size, width, height, thumbnail_path, coalesce(source_job_id::text, ''), created_at
		FROM goes_frames WHERE satellite=$1 AND sector=$2 AND band=$3
		ORDER BY abs(extract(epoch FROM capture_time - $4)) ASC LIMIT 1`, satellite, sector, band, at)
	f, err := scanFrame(row)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return f, err
}

func scanFrame(row rowScanner) (*catalogmodel.GoesFrame, error) {
	f := &catalogmodel.GoesFrame{}
	if err := row.Scan(&f.ID, &f.Satellite, &f.Sector, &f.Band, &f.CaptureTime, &f.FilePath, &f.FileSize,
		&f.Width, &f.Height, &f.ThumbnailPath, &f.SourceJobID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}
