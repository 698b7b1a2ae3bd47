package pgx

import (
	"context"
	"time"
)

// RecordCompileTime logs how long a compile of the given size took.
// A zero graphID records a stat with no graph attached, which keeps
// failed compiles in the history too.
func (s *GraphDBStore) RecordCompileTime(ctx context.Context, graphID int64, lines int, duration time.Duration) error {
	_, err := s.conn.Exec(ctx, recordCompileTimeSQL, graphID, lines, duration.Milliseconds())
	return err
}

// PredictCompileTime estimates a compile duration from the per-line
// rate of the most recent compiles. With no history it returns zero;
// callers treat that as no estimate.
func (s *GraphDBStore) PredictCompileTime(ctx context.Context, lines int) (time.Duration, error) {
	var perLineMs float64
	if err := s.conn.QueryRow(ctx, predictCompileTimeSQL).Scan(&perLineMs); err != nil {
		return 0, err
	}
	if perLineMs <= 0 || lines <= 0 {
		return 0, nil
	}
	return time.Duration(perLineMs*float64(lines)) * time.Millisecond, nil
}

const recordCompileTimeSQL = `
INSERT INTO compile_stats (graph_id, lines, duration_ms)
VALUES (NULLIF($1::bigint, 0), $2, $3);
`

const predictCompileTimeSQL = `
SELECT COALESCE(avg(duration_ms::double precision / lines), 0)
FROM (
    SELECT duration_ms, lines
    FROM compile_stats
    WHERE lines > 0
    ORDER BY created_at DESC
    LIMIT 50
) recent;
`
