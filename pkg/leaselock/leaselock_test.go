package leaselock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	key string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.key
	return nil
}

// fakeConn answers acquire and renew queries from counters instead of
// a database. freeAfter is how many acquire attempts fail before one
// succeeds; renewals succeed until failRenewAfter renew calls.
type fakeConn struct {
	mu             sync.Mutex
	freeAfter      int
	failRenewAfter int

	acquires int
	renews   int
	releases int
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := args[0].(string)
	switch {
	case strings.Contains(sql, "INSERT INTO app_locks"):
		c.acquires++
		if c.acquires <= c.freeAfter {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{key: key}
	case strings.Contains(sql, "UPDATE app_locks"):
		c.renews++
		if c.failRenewAfter > 0 && c.renews > c.failRenewAfter {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{key: key}
	default:
		return fakeRow{err: errors.New("unexpected query")}
	}
}

func (c *fakeConn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases++
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (c *fakeConn) counts() (acquires, renews, releases int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquires, c.renews, c.releases
}

func TestAcquireAndRelease(t *testing.T) {
	conn := &fakeConn{}
	client := &Client{db: conn}

	lease, err := client.Acquire(context.Background(), "graph-7", Options{TokenPrefix: "worker-"})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if lease.Key != "graph-7" {
		t.Errorf("lease key = %q", lease.Key)
	}
	if !strings.HasPrefix(lease.Token, "worker-") || lease.Token == "worker-" {
		t.Errorf("lease token = %q, want prefixed nanoid", lease.Token)
	}
	if lease.Context.Err() != nil {
		t.Errorf("lease context done before release: %v", lease.Context.Err())
	}

	if err := lease.Release(context.Background()); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, _, releases := conn.counts(); releases != 1 {
		t.Errorf("releases = %d, want 1", releases)
	}
	if lease.Context.Err() == nil {
		t.Error("lease context should be canceled after release")
	}
}

func TestAcquireBusy(t *testing.T) {
	conn := &fakeConn{freeAfter: 1000}
	client := &Client{db: conn}

	_, err := client.Acquire(context.Background(), "graph-7", Options{})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Acquire() error = %v, want ErrBusy", err)
	}
	if acquires, _, _ := conn.counts(); acquires != 1 {
		t.Errorf("acquires = %d, want a single fast-fail attempt", acquires)
	}
}

func TestAcquireWaitsForHolder(t *testing.T) {
	conn := &fakeConn{freeAfter: 2}
	client := &Client{db: conn}

	lease, err := client.Acquire(context.Background(), "graph-7", Options{
		Wait:         true,
		WaitInterval: 2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer lease.Release(context.Background())

	if acquires, _, _ := conn.counts(); acquires != 3 {
		t.Errorf("acquires = %d, want 3", acquires)
	}
}

func TestWithLeaseReleases(t *testing.T) {
	conn := &fakeConn{}
	client := &Client{db: conn}

	ran := false
	err := client.WithLease(context.Background(), "graph-7", Options{}, func(ctx context.Context) error {
		ran = true
		if ctx.Err() != nil {
			t.Errorf("lease context done inside fn: %v", ctx.Err())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLease() error = %v", err)
	}
	if !ran {
		t.Fatal("fn never ran")
	}
	if _, _, releases := conn.counts(); releases != 1 {
		t.Errorf("releases = %d, want 1", releases)
	}

	boom := errors.New("boom")
	err = client.WithLease(context.Background(), "graph-7", Options{}, func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("WithLease() error = %v, want the fn error", err)
	}
}

func TestRenewalLossCancelsLease(t *testing.T) {
	conn := &fakeConn{failRenewAfter: 1}
	client := &Client{db: conn}

	lease, err := client.Acquire(context.Background(), "graph-7", Options{
		TTL:        50 * time.Millisecond,
		RenewEvery: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer lease.Release(context.Background())

	select {
	case <-lease.Context.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("lease context never canceled after lost renewal")
	}
	if cause := context.Cause(lease.Context); !errors.Is(cause, ErrLost) {
		t.Errorf("cancel cause = %v, want ErrLost", cause)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.TTL != 2*time.Minute {
		t.Errorf("default TTL = %v", opts.TTL)
	}
	if opts.RenewEvery != time.Minute {
		t.Errorf("default RenewEvery = %v", opts.RenewEvery)
	}

	opts = Options{TTL: 10 * time.Second, RenewEvery: 30 * time.Second}.withDefaults()
	if opts.RenewEvery != 5*time.Second {
		t.Errorf("RenewEvery above TTL should fall back to TTL/2, got %v", opts.RenewEvery)
	}
}
