package pgx

import (
	"context"
	"encoding/json"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"
)

// GetDefinition serves the shared definition cache behind
// pkg/resolve. Entries older than the TTL read as absent; the
// resolver refetches and overwrites them.
func (s *GraphDBStore) GetDefinition(ctx context.Context, location string) (map[string]string, bool, error) {
	var payload []byte
	err := s.conn.QueryRow(ctx, getDefinitionSQL, location, s.definitionTTL.Milliseconds()).Scan(&payload)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	values := make(map[string]string)
	if err := json.Unmarshal(payload, &values); err != nil {
		return nil, false, err
	}
	return values, true, nil
}

// PutDefinition stores a freshly fetched value set, replacing any
// stale entry for the location.
func (s *GraphDBStore) PutDefinition(ctx context.Context, location string, values map[string]string) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, putDefinitionSQL, location, payload)
	return err
}

const getDefinitionSQL = `
SELECT value_set
FROM definitions
WHERE location = $1
  AND fetched_at > now() - ($2::bigint * interval '1 millisecond');
`

const putDefinitionSQL = `
INSERT INTO definitions (location, value_set, fetched_at)
VALUES ($1, $2, now())
ON CONFLICT (location) DO UPDATE
SET value_set  = EXCLUDED.value_set,
    fetched_at = EXCLUDED.fetched_at;
`
