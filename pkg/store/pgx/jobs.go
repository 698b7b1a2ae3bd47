package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/graphbio/bel/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// CreateJob inserts a pending status row for an async compile. The
// payload is the queue message, kept so stale jobs can be requeued.
func (s *GraphDBStore) CreateJob(ctx context.Context, correlationID string, payload []byte) error {
	if payload == nil {
		payload = []byte("null")
	}
	_, err := s.conn.Exec(ctx, createJobSQL, correlationID, store.JobPending, string(payload))
	return err
}

// ClaimJob moves a pending job to compiling. False means another
// worker claimed it first or the job is past that state.
func (s *GraphDBStore) ClaimJob(ctx context.Context, correlationID string) (bool, error) {
	var claimed string
	err := s.conn.QueryRow(ctx, claimJobSQL, correlationID).Scan(&claimed)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetJobStatus advances a job. A nil graphID keeps the current value,
// so failure updates do not erase an id recorded earlier.
func (s *GraphDBStore) SetJobStatus(ctx context.Context, correlationID string, status store.JobStatus, graphID *int64, message string) error {
	tag, err := s.conn.Exec(ctx, setJobStatusSQL, correlationID, status, graphID, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetJob returns the status row of an async compile.
func (s *GraphDBStore) GetJob(ctx context.Context, correlationID string) (*store.Job, error) {
	var job store.Job
	err := s.conn.QueryRow(ctx, getJobSQL, correlationID).Scan(
		&job.CorrelationID,
		&job.Status,
		&job.GraphID,
		&job.Message,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListStaleJobs returns compiling jobs whose last update is older than
// olderThan. Those workers are gone; the jobs can be requeued.
func (s *GraphDBStore) ListStaleJobs(ctx context.Context, olderThan time.Duration) ([]store.StaleJob, error) {
	rows, err := s.conn.Query(ctx, listStaleJobsSQL, olderThan.Milliseconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []store.StaleJob
	for rows.Next() {
		var job store.StaleJob
		if err := rows.Scan(&job.CorrelationID, &job.Payload); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

const createJobSQL = `
INSERT INTO compile_jobs (correlation_id, status, payload)
VALUES ($1, $2, $3::jsonb);
`

const claimJobSQL = `
UPDATE compile_jobs
SET status = 'compiling', updated_at = now()
WHERE correlation_id = $1 AND status = 'pending'
RETURNING correlation_id;
`

const setJobStatusSQL = `
UPDATE compile_jobs
SET status     = $2,
    graph_id   = COALESCE($3, graph_id),
    message    = $4,
    updated_at = now()
WHERE correlation_id = $1;
`

const getJobSQL = `
SELECT correlation_id, status, graph_id, message, created_at, updated_at
FROM compile_jobs
WHERE correlation_id = $1;
`

const listStaleJobsSQL = `
SELECT correlation_id, payload
FROM compile_jobs
WHERE status = 'compiling'
  AND updated_at < now() - ($1::bigint * interval '1 millisecond');
`
