package weather

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Cache holds the most recent Report for ttl. Concurrent callers that miss
// the cache wait for a single upstream fetch.
type Cache struct {
	client Client
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	report    Report
	fetchedAt time.Time
	valid     bool
}

type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(client Client, ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{client: client, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached report while it is younger than the TTL and
// allowCached is set; otherwise it fetches a new one.
func (c *Cache) Get(ctx context.Context, allowCached bool) (Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if allowCached && c.valid && !c.now().After(c.fetchedAt.Add(c.ttl)) {
		return c.report, nil
	}
	return c.refreshLocked(ctx)
}

// Refresh fetches a new report regardless of the cache state.
func (c *Cache) Refresh(ctx context.Context) (Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) (Report, error) {
	report, err := c.client.Fetch(ctx)
	if err != nil {
		return Report{}, err
	}
	c.report = report
	c.fetchedAt = c.now()
	c.valid = true
	return report, nil
}

// Refresher refreshes a Cache on a cron schedule so requests rarely wait on
// the provider.
type Refresher struct {
	cron    *cron.Cron
	cache   *Cache
	timeout time.Duration
	logger  *slog.Logger
}

// NewRefresher parses schedule (standard cron syntax or descriptors such as
// "@every 5m") and binds it to cache.
func NewRefresher(cache *Cache, schedule string, logger *slog.Logger) (*Refresher, error) {
	r := &Refresher{
		cron:    cron.New(),
		cache:   cache,
		timeout: 30 * time.Second,
		logger:  logger.With("component", "weather-refresher"),
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish or ctx
// to expire.
func (r *Refresher) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	report, err := r.cache.Refresh(ctx)
	if err != nil {
		r.logger.Warn("weather refresh failed", "err", err)
		return
	}
	r.logger.Debug("weather refreshed", "temperature", report.Temperature)
}
