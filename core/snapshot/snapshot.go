// Package snapshot keeps the normalized match snapshot shared by every view.
//
// A Cache refreshes at most once per TTL. Concurrent callers that find the snapshot
// expired wait on a single refresh and then observe its result. When the source
// cannot be reached the last good snapshot is served marked stale.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shardsquad/shardstats/core/normalize"
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// Snapshot origins.
const (
	OriginSource = "source"
	OriginStore  = "store"
)

// currentCacheVersion defines the version of the persisted snapshot encoding.
const currentCacheVersion = 1

// ErrSourceFetch wraps every failure to load rows from the match source.
var ErrSourceFetch = errors.New("failed to fetch matches from source")

// Snapshot is an immutable set of normalized facts loaded at one point in time.
// Callers must not modify the slices.
type Snapshot struct {
	Matches        []schema.MatchRecord            `json:"matches"`
	Participations []schema.CharacterParticipation `json:"participations"`
	LoadedAt       time.Time                       `json:"loaded_at"`
	Origin         string                          `json:"-"`
	Stale          bool                            `json:"-"`
}

// Age returns how long ago the snapshot was loaded.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.LoadedAt)
}

// Cache serves snapshots from memory, the durable store or the match source.
type Cache struct {
	src          contract.MatchSource
	ttl          time.Duration
	limit        int
	fetchTimeout time.Duration
	now          func() time.Time
	store        contract.CacheStore
	key          string
	history      contract.HistoryStore

	mu      sync.Mutex // held during refresh
	current atomic.Pointer[Snapshot]

	// last failed refresh, guarded by mu
	failedAt time.Time
	failErr  error
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a snapshot is served before it is refreshed.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithFetchLimit sets the maximum number of rows read per refresh.
func WithFetchLimit(limit int) Option {
	return func(c *Cache) { c.limit = limit }
}

// WithFetchTimeout bounds each source fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) { c.fetchTimeout = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStore persists snapshots so a new process can start warm.
func WithStore(store contract.CacheStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithStoreKey sets the durable store key. See Key.
func WithStoreKey(key string) Option {
	return func(c *Cache) { c.key = key }
}

// WithHistory records every fetch attempt.
func WithHistory(history contract.HistoryStore) Option {
	return func(c *Cache) { c.history = history }
}

// New creates a cache over src.
func New(src contract.MatchSource, opts ...Option) *Cache {
	c := &Cache{
		src:          src,
		ttl:          contract.DefaultCacheTTL,
		limit:        contract.DefaultFetchLimit,
		fetchTimeout: contract.DefaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.key == "" {
		c.key = Key(fmt.Sprint(c.limit))
	}
	return c
}

// Key derives a durable store key from the parameters that shape a snapshot.
func Key(parts ...string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(strings.Join(parts, ":"))))
}

// Load returns a snapshot no older than the TTL when possible.
// On fetch failure the last good snapshot is returned marked stale together with an
// error wrapping ErrSourceFetch. With nothing cached the snapshot is nil.
// Callers that waited on a refresh which failed share its outcome instead of fetching again.
func (c *Cache) Load(ctx context.Context) (*Snapshot, error) {
	if s := c.fresh(); s != nil {
		return s, nil
	}
	entered := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited
	if s := c.fresh(); s != nil {
		return s, nil
	}
	if c.failErr != nil && !c.failedAt.Before(entered) {
		return c.fallback(), c.failErr
	}

	if c.current.Load() == nil {
		if s := c.checkStoreHit(true); s != nil {
			c.current.Store(s)
			return s, nil
		}
	}

	s, err := c.refresh(ctx)
	if err == nil {
		c.failErr = nil
		return s, nil
	}

	c.failErr = fmt.Errorf("%w: %w", ErrSourceFetch, err)
	c.failedAt = c.now()
	return c.fallback(), c.failErr
}

// fallback returns the last known snapshot marked stale, or nil.
func (c *Cache) fallback() *Snapshot {
	if last := c.current.Load(); last != nil {
		return markStale(last)
	}
	if stored := c.checkStoreHit(false); stored != nil {
		return markStale(stored)
	}
	return nil
}

// Invalidate drops the in-memory snapshot so the next Load refreshes.
func (c *Cache) Invalidate() {
	c.current.Store(nil)
}

func (c *Cache) fresh() *Snapshot {
	s := c.current.Load()
	if s == nil || s.Age(c.now()) > c.ttl {
		return nil
	}
	return s
}

// refresh fetches, normalizes and publishes a new snapshot.
func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	start := c.now()
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	raws, err := c.src.FetchRecent(fetchCtx, c.limit)
	if err != nil {
		c.recordRun(schema.RefreshRun{StartTime: start, Duration: c.now().Sub(start), Origin: OriginSource, Err: err})
		return nil, err
	}

	matches, parts := normalize.NormalizeAll(raws)
	s := &Snapshot{
		Matches:        matches,
		Participations: parts,
		LoadedAt:       c.now(),
		Origin:         OriginSource,
	}
	c.current.Store(s)
	c.persist(s)
	c.recordRun(schema.RefreshRun{
		StartTime:      start,
		Duration:       c.now().Sub(start),
		Origin:         OriginSource,
		Matches:        len(matches),
		Participations: len(parts),
	})
	return s, nil
}

// checkStoreHit attempts to retrieve and validate a persisted snapshot.
func (c *Cache) checkStoreHit(requireFresh bool) *Snapshot {
	if c.store == nil {
		return nil
	}
	data, version, ts, err := c.store.Get(c.key)
	if err != nil || version != currentCacheVersion {
		return nil
	}
	if requireFresh && c.now().Sub(time.Unix(ts, 0)) > c.ttl {
		return nil
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if s.LoadedAt.IsZero() {
		s.LoadedAt = time.Unix(ts, 0)
	}
	s.Origin = OriginStore
	return &s
}

func (c *Cache) persist(s *Snapshot) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.store.Set(c.key, data, currentCacheVersion, s.LoadedAt.Unix()); err != nil {
		contract.LogWarn("Failed to persist snapshot", err)
	}
}

func (c *Cache) recordRun(run schema.RefreshRun) {
	if c.history == nil {
		return
	}
	if _, err := c.history.RecordRun(run); err != nil {
		contract.LogWarn("Failed to record refresh run", err)
	}
}

func markStale(s *Snapshot) *Snapshot {
	cp := *s
	cp.Stale = true
	return &cp
}
