// Package pgx implements store.GraphStore on PostgreSQL. All SQL is
// inline; bulk writes go through chunked unnest inserts inside one
// transaction per graph.
package pgx

import (
	"context"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStore persists compiled graphs in PostgreSQL. It takes any
// connection satisfying pgxIConn, so callers pass a pgxpool.Pool in
// production and a transaction in tests.
type GraphDBStore struct {
	conn          pgxIConn
	definitionTTL time.Duration
}

type GraphDBStoreParams struct {
	Conn pgxIConn

	// DefinitionTTL bounds how long a cached definition value set is
	// served before the resolver refetches it. Zero means 24 hours.
	DefinitionTTL time.Duration
}

func NewGraphDBStore(params GraphDBStoreParams) *GraphDBStore {
	ttl := params.DefinitionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &GraphDBStore{
		conn:          params.Conn,
		definitionTTL: ttl,
	}
}
