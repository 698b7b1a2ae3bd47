// Package store persists compiled graphs. GraphStore is the surface
// the server, worker, and CLI program against; the pgx subpackage
// implements it on PostgreSQL with embedded migrations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/graph"
)

// ErrNotFound reports a graph or job id the store does not hold.
var ErrNotFound = errors.New("not found")

// GraphSummary is one row of the graph listing: identity, size, and
// the diagnostic counts of the compile that produced it.
type GraphSummary struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
	Report    common.Summary `json:"report"`
	CreatedAt time.Time      `json:"created_at"`
}

// JobStatus tracks an async compile through its lifecycle.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompiling JobStatus = "compiling"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is the status row of one async compile request.
type Job struct {
	CorrelationID string    `json:"correlation_id"`
	Status        JobStatus `json:"status"`
	GraphID       *int64    `json:"graph_id,omitempty"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StaleJob is a compiling job whose worker stopped updating it. The
// payload is the queue message as submitted, so the job can be
// requeued as is.
type StaleJob struct {
	CorrelationID string
	Payload       []byte
}

// GraphStore defines the interface for persisting and querying
// compiled graphs. It covers graph CRUD with diagnostics, the shared
// definition cache behind pkg/resolve, compile duration statistics,
// and the status rows of async compile jobs.
type GraphStore interface {
	SaveGraph(ctx context.Context, g *graph.Graph, report *common.Report) (int64, error)
	GetGraph(ctx context.Context, id int64) (*graph.Graph, error)
	GetGraphSummary(ctx context.Context, id int64) (*GraphSummary, error)
	ListGraphs(ctx context.Context) ([]GraphSummary, error)
	DeleteGraph(ctx context.Context, id int64) error
	GetDiagnostics(ctx context.Context, id int64) ([]common.Diagnostic, error)

	// GetDefinition and PutDefinition satisfy resolve.Cache, so a
	// store can back the resolver shared tier directly.
	GetDefinition(ctx context.Context, location string) (map[string]string, bool, error)
	PutDefinition(ctx context.Context, location string, values map[string]string) error

	RecordCompileTime(ctx context.Context, graphID int64, lines int, duration time.Duration) error
	PredictCompileTime(ctx context.Context, lines int) (time.Duration, error)

	CreateJob(ctx context.Context, correlationID string, payload []byte) error
	// ClaimJob moves a pending job to compiling. False means another
	// worker holds it already or the job is past that state.
	ClaimJob(ctx context.Context, correlationID string) (bool, error)
	SetJobStatus(ctx context.Context, correlationID string, status JobStatus, graphID *int64, message string) error
	GetJob(ctx context.Context, correlationID string) (*Job, error)
	ListStaleJobs(ctx context.Context, olderThan time.Duration) ([]StaleJob, error)
}
