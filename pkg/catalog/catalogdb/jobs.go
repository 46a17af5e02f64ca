package catalogdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateJob(ctx context.Context, job *catalogmodel.Job) error {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, status, params, progress, status_message, error, task_id, input_path, output_path, created_at, started_at, completed_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		job.ID, job.Type, job.Status, params, job.Progress, job.StatusMessage, job.Error, job.TaskID,
		job.InputPath, job.OutputPath, job.CreatedAt, job.StartedAt, job.CompletedAt, job.UpdatedAt)
	return err
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*catalogmodel.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, status, params, progress, status_message, error, task_id, input_path, output_path, created_at, started_at, completed_at, updated_at
		FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return job, err
}

func (s *PostgresStore) ListJobs(ctx context.Context, jobType catalogmodel.JobType, status catalogmodel.JobStatus, page, limit int) ([]*catalogmodel.Job, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	where := "WHERE ($1 = '' OR type = $1) AND ($2 = '' OR status = $2)"
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM jobs "+where, jobType, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, status, params, progress, status_message, error, task_id, input_path, output_path, created_at, started_at, completed_at, updated_at
		FROM jobs `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`, jobType, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []*catalogmodel.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *catalogmodel.Job) error {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE jobs SET status=$2, params=$3, progress=$4, status_message=$5, error=$6, task_id=$7,
			input_path=$8, output_path=$9, started_at=$10, completed_at=$11, updated_at=now()
		WHERE id=$1`,
		job.ID, job.Status, params, job.Progress, job.StatusMessage, job.Error, job.TaskID,
		job.InputPath, job.OutputPath, job.StartedAt, job.CompletedAt)
	return err
}

// UpdateJobProgress is the throttled-write path described in §4.4; it
// touches only progress and status_message so callers never risk
// clobbering a concurrent status transition.
func (s *PostgresStore) UpdateJobProgress(ctx context.Context, id string, progress int, statusMessage string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE jobs SET progress=$2, status_message=$3, updated_at=now() WHERE id=$1`, id, progress, statusMessage)
	return err
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	return err
}

func (s *PostgresStore) AppendJobLog(ctx context.Context, entry *catalogmodel.JobLog) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO job_logs (job_id, level, message, timestamp) VALUES ($1,$2,$3,$4) RETURNING id`,
		entry.JobID, entry.Level, entry.Message, entry.Timestamp).Scan(&entry.ID)
}

func (s *PostgresStore) ListJobLogs(ctx context.Context, jobID string) ([]*catalogmodel.JobLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, job_id, level, message, timestamp FROM job_logs WHERE job_id=$1 ORDER BY timestamp ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*catalogmodel.JobLog
	for rows.Next() {
		l := &catalogmodel.JobLog{}
		if err := rows.Scan(&l.ID, &l.JobID, &l.Level, &l.Message, &l.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *PostgresStore) ListStaleProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*catalogmodel.Job, error) {
	cutoff := time.Now().Add(-olderThan)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, status, params, progress, status_message, error, task_id, input_path, output_path, created_at, started_at, completed_at, updated_at
		FROM jobs WHERE status = $1 AND coalesce(updated_at, started_at, created_at) < $2`,
		catalogmodel.JobStatusProcessing, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobRows(rows)
}

func (s *PostgresStore) ListStalePendingJobs(ctx context.Context, olderThan time.Duration) ([]*catalogmodel.Job, error) {
	cutoff := time.Now().Add(-olderThan)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, status, params, progress, status_message, error, task_id, input_path, output_path, created_at, started_at, completed_at, updated_at
		FROM jobs WHERE status = $1 AND task_id = '' AND created_at < $2`,
		catalogmodel.JobStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobRows(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*catalogmodel.Job, error) {
	job := &catalogmodel.Job{}
	var params []byte
	if err := row.Scan(&job.ID, &job.Type, &job.Status, &params, &job.Progress, &job.StatusMessage,
		&job.Error, &job.TaskID, &job.InputPath, &job.OutputPath, &job.CreatedAt, &job.StartedAt,
		&job.CompletedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &job.Params); err != nil {
			return nil, err
		}
	}
	return job, nil
}

func scanJobRows(rows *sql.Rows) ([]*catalogmodel.Job, error) {
	var jobs []*catalogmodel.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
