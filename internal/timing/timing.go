// Package timing records how long compiles take and predicts how long
// new ones will, backed by the store's compile statistics.
package timing

import (
	"context"
	"time"
)

// Recorder is the slice of the graph store the timing helpers need.
type Recorder interface {
	RecordCompileTime(ctx context.Context, graphID int64, lines int, duration time.Duration) error
	PredictCompileTime(ctx context.Context, lines int) (time.Duration, error)
}

// Stopwatch measures one compile from Start to Record.
type Stopwatch struct {
	start time.Time
}

func Start() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

func (s *Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Record stores the elapsed time for a finished compile. Stats are
// advisory; callers typically log a failure and move on.
func (s *Stopwatch) Record(ctx context.Context, rec Recorder, graphID int64, lines int) error {
	return rec.RecordCompileTime(ctx, graphID, lines, s.Elapsed())
}

// Predict estimates the wall time for a document of the given line
// count. A zero duration means no estimate is available yet.
func Predict(ctx context.Context, rec Recorder, lines int) (time.Duration, error) {
	return rec.PredictCompileTime(ctx, lines)
}
