package catalogdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateFetchSchedule(ctx context.Context, sch *catalogmodel.FetchSchedule) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO fetch_schedules (id, name, preset_id, interval_minutes, next_run_at, last_run_at, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING created_at`,
		sch.ID, sch.Name, sch.PresetID, sch.IntervalMinutes, sch.NextRunAt, sch.LastRunAt, sch.IsActive).Scan(&sch.CreatedAt)
}

func (s *PostgresStore) GetFetchSchedule(ctx context.Context, id string) (*catalogmodel.FetchSchedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, preset_id, interval_minutes, next_run_at, last_run_at, is_active, created_at
		FROM fetch_schedules WHERE id=$1`, id)
	sch, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return sch, err
}

func (s *PostgresStore) ListFetchSchedules(ctx context.Context) ([]*catalogmodel.FetchSchedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, preset_id, interval_minutes, next_run_at, last_run_at, is_active, created_at
		FROM fetch_schedules ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.FetchSchedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

// ListDueFetchSchedules backs beat's tick_schedules (§4.5).
func (s *PostgresStore) ListDueFetchSchedules(ctx context.Context, now time.Time) ([]*catalogmodel.FetchSchedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, preset_id, interval_minutes, next_run_at, last_run_at, is_active, created_at
		FROM fetch_schedules WHERE is_active AND next_run_at <= $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.FetchSchedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateFetchScheduleRun(ctx context.Context, id string, lastRunAt, nextRunAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE fetch_schedules SET last_run_at=$2, next_run_at=$3 WHERE id=$1`, id, lastRunAt, nextRunAt)
	return err
}

// SetFetchScheduleActive enforces the invariant that is_active implies a
// non-null next_run_at and vice versa (§3).
func (s *PostgresStore) SetFetchScheduleActive(ctx context.Context, id string, active bool, nextRunAt *time.Time) error {
	if active && nextRunAt == nil {
		return catalog.Class.New("activating a schedule requires next_run_at")
	}
	if !active {
		nextRunAt = nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE fetch_schedules SET is_active=$2, next_run_at=$3 WHERE id=$1`, id, active, nextRunAt)
	return err
}

func (s *PostgresStore) DeleteFetchSchedule(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fetch_schedules WHERE id=$1`, id)
	return err
}

func scanSchedule(row rowScanner) (*catalogmodel.FetchSchedule, error) {
	sch := &catalogmodel.FetchSchedule{}
	if err := row.Scan(&sch.ID, &sch.Name, &sch.PresetID, &sch.IntervalMinutes, &sch.NextRunAt, &sch.LastRunAt, &sch.IsActive, &sch.CreatedAt); err != nil {
		return nil, err
	}
	return sch, nil
}
