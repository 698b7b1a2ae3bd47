package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/graphbio/bel/internal/util"
	"github.com/graphbio/bel/pkg/logger"
)

// ObjectFetcher reads one stored object, for s3:// locations.
// internal/storage provides the implementation.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// Cache is an optional shared cache behind the in-memory one, so
// worker fleets avoid refetching the same definition files. pkg/store
// provides a Postgres-backed implementation.
type Cache interface {
	GetDefinition(ctx context.Context, location string) (map[string]string, bool, error)
	PutDefinition(ctx context.Context, location string, values map[string]string) error
}

// Params configure a Resolver.
type Params struct {
	// Client serves http and https locations. Nil gets a client with
	// a 30 second timeout.
	Client *http.Client

	// Objects serves s3:// locations. Nil leaves them unresolvable.
	Objects ObjectFetcher

	// Shared is consulted after the in-memory cache and written
	// through on every fetch. Nil disables it.
	Shared Cache

	// Retries bounds fetch attempts per location. Values below one
	// fall back to 3.
	Retries int
}

// Resolver fetches definition files and caches the parsed value sets
// by location. It is safe for concurrent use across sessions.
type Resolver struct {
	client  *http.Client
	objects ObjectFetcher
	shared  Cache
	retries int

	mu    sync.RWMutex
	cache map[string]map[string]string
}

func New(params Params) *Resolver {
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	retries := params.Retries
	if retries <= 0 {
		retries = 3
	}
	return &Resolver{
		client:  client,
		objects: params.Objects,
		shared:  params.Shared,
		retries: retries,
		cache:   make(map[string]map[string]string),
	}
}

// Resolve returns the value set at location, fetching and parsing it
// on first use. The returned map is shared across callers and must
// not be mutated.
func (r *Resolver) Resolve(ctx context.Context, location string) (map[string]string, error) {
	r.mu.RLock()
	values, ok := r.cache[location]
	r.mu.RUnlock()
	if ok {
		return values, nil
	}

	if r.shared != nil {
		values, ok, err := r.shared.GetDefinition(ctx, location)
		if err != nil {
			logger.Warn("[Resolve] Failed to read shared definition cache", "location", location, "err", err)
		} else if ok {
			r.remember(location, values)
			return values, nil
		}
	}

	data, err := util.RetryWithContext(ctx, r.retries, func(ctx context.Context) ([]byte, error) {
		return r.fetch(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	file, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", location, err)
	}

	r.remember(location, file.Values)
	if r.shared != nil {
		if err := r.shared.PutDefinition(ctx, location, file.Values); err != nil {
			logger.Warn("[Resolve] Failed to write shared definition cache", "location", location, "err", err)
		}
	}
	logger.Debug("[Resolve] Resolved definition", "location", location, "values", len(file.Values))
	return file.Values, nil
}

func (r *Resolver) remember(location string, values map[string]string) {
	r.mu.Lock()
	r.cache[location] = values
	r.mu.Unlock()
}

func (r *Resolver) fetch(ctx context.Context, location string) ([]byte, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	switch parsed.Scheme {
	case "http", "https":
		return r.fetchHTTP(ctx, location)
	case "s3":
		if r.objects == nil {
			return nil, fmt.Errorf("no object fetcher configured for %s", location)
		}
		return r.objects.Fetch(ctx, parsed.Host, strings.TrimPrefix(parsed.Path, "/"))
	case "file":
		return os.ReadFile(parsed.Path)
	case "":
		return os.ReadFile(location)
	default:
		return nil, fmt.Errorf("unsupported location scheme %q", parsed.Scheme)
	}
}

func (r *Resolver) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	response, err := r.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", location, response.Status)
	}
	return io.ReadAll(response.Body)
}
