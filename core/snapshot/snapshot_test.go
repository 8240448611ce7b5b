package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shardsquad/shardstats/internal/iocache"
	"github.com/shardsquad/shardstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeSource returns rows from a fixed set, counting every fetch.
type fakeSource struct {
	mu    sync.Mutex
	rows  []schema.RawMatch
	err   error
	delay time.Duration
	calls atomic.Int32
	limit int
}

func (f *fakeSource) FetchRecent(ctx context.Context, limit int) ([]schema.RawMatch, error) {
	f.calls.Add(1)
	f.mu.Lock()
	rows, err, delay := f.rows, f.err, f.delay
	f.limit = limit
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func rawRows() []schema.RawMatch {
	return []schema.RawMatch{
		{
			ID:                   2,
			Version:              sql.NullString{String: "1.0.1", Valid: true},
			PlayerName:           sql.NullString{String: "Ana", Valid: true},
			Win:                  sql.NullBool{Bool: true, Valid: true},
			Difficulty:           sql.NullString{String: "1", Valid: true},
			CharactersDamageData: []byte(`[{"character":"0","damage":100,"damage_boss":10,"dps":5},{"character":"1","damage":50}]`),
		},
		{
			ID:                   1,
			Version:              sql.NullString{String: "1.0.0", Valid: true},
			PlayerName:           sql.NullString{String: "Bo", Valid: true},
			Win:                  sql.NullBool{Bool: false, Valid: true},
			CharactersDamageData: []byte(`[{"character":"2","damage":20}]`),
		},
	}
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLoadFetchesAndNormalizes(t *testing.T) {
	src := &fakeSource{rows: rawRows()}
	clock := newClock()
	c := New(src, WithClock(clock.Now), WithFetchLimit(50))

	s, err := c.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Len(t, s.Matches, 2)
	assert.Len(t, s.Participations, 3)
	assert.Equal(t, OriginSource, s.Origin)
	assert.False(t, s.Stale)
	assert.Equal(t, clock.Now(), s.LoadedAt)
	assert.Equal(t, 50, src.limit)
}

func TestLoadRespectsTTL(t *testing.T) {
	src := &fakeSource{rows: rawRows()}
	clock := newClock()
	c := New(src, WithClock(clock.Now), WithTTL(5*time.Minute))

	first, err := c.Load(context.Background())
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	second, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second, "snapshot at exactly the TTL is still fresh")
	assert.Equal(t, int32(1), src.calls.Load())

	clock.Advance(time.Second)
	third, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestConcurrentLoadFetchesOnce(t *testing.T) {
	src := &fakeSource{rows: rawRows(), delay: 20 * time.Millisecond}
	c := New(src)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*Snapshot, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := c.Load(context.Background())
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestConcurrentLoadAfterFailedRefreshFetchesOnce(t *testing.T) {
	src := &fakeSource{rows: rawRows()}
	clock := newClock()
	c := New(src, WithClock(clock.Now), WithTTL(time.Minute))

	good, err := c.Load(context.Background())
	require.NoError(t, err)

	src.mu.Lock()
	src.err = errors.New("connection refused")
	src.delay = 50 * time.Millisecond
	src.mu.Unlock()
	clock.Advance(2 * time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], errs[i] = c.Load(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(2), src.calls.Load(), "one initial fetch and one shared failed refresh")
	for i := range callers {
		assert.ErrorIs(t, errs[i], ErrSourceFetch)
		require.NotNil(t, snaps[i])
		assert.True(t, snaps[i].Stale)
		assert.Equal(t, good.Matches, snaps[i].Matches)
	}

	src.mu.Lock()
	src.err = nil
	src.delay = 0
	src.mu.Unlock()
	clock.Advance(time.Second)

	s, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Stale)
	assert.Equal(t, int32(3), src.calls.Load(), "a later caller retries the source")
}

func TestLoadServesStaleOnFailure(t *testing.T) {
	src := &fakeSource{rows: rawRows()}
	clock := newClock()
	c := New(src, WithClock(clock.Now), WithTTL(time.Minute))

	good, err := c.Load(context.Background())
	require.NoError(t, err)

	src.fail(errors.New("connection refused"))
	clock.Advance(2 * time.Minute)

	s, err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceFetch)
	assert.Contains(t, err.Error(), "connection refused")
	require.NotNil(t, s)
	assert.True(t, s.Stale)
	assert.Equal(t, good.Matches, s.Matches)
	assert.False(t, good.Stale, "published snapshot is not modified")
}

func TestLoadWithNothingCached(t *testing.T) {
	src := &fakeSource{err: errors.New("no route to host")}
	c := New(src)

	s, err := c.Load(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrSourceFetch)
}

func TestLoadFetchTimeout(t *testing.T) {
	src := &fakeSource{rows: rawRows(), delay: time.Second}
	c := New(src, WithFetchTimeout(10*time.Millisecond))

	s, err := c.Load(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrSourceFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvalidate(t *testing.T) {
	src := &fakeSource{rows: rawRows()}
	c := New(src)

	_, err := c.Load(context.Background())
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func encoded(t *testing.T, s Snapshot) []byte {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return data
}

func TestWarmStartFromStore(t *testing.T) {
	clock := newClock()
	stored := Snapshot{
		Matches:  []schema.MatchRecord{{ID: 9, Win: true}},
		LoadedAt: clock.Now().Add(-time.Minute),
	}

	store := &iocache.MockCacheStore{}
	store.On("Get", "k").Return(encoded(t, stored), currentCacheVersion, stored.LoadedAt.Unix(), nil)

	src := &fakeSource{rows: rawRows()}
	c := New(src, WithClock(clock.Now), WithStore(store), WithStoreKey("k"))

	s, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OriginStore, s.Origin)
	assert.Equal(t, int64(9), s.Matches[0].ID)
	assert.Equal(t, int32(0), src.calls.Load())
	store.AssertExpectations(t)
}

func TestStoreEntryRejected(t *testing.T) {
	clock := newClock()
	tests := []struct {
		name    string
		version int
		age     time.Duration
	}{
		{"old version", currentCacheVersion + 1, 0},
		{"expired", currentCacheVersion, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := clock.Now().Add(-tt.age)
			store := &iocache.MockCacheStore{}
			store.On("Get", "k").Return(encoded(t, Snapshot{LoadedAt: ts}), tt.version, ts.Unix(), nil)
			store.On("Set", "k", mock.Anything, currentCacheVersion, clock.Now().Unix()).Return(nil)

			src := &fakeSource{rows: rawRows()}
			c := New(src, WithClock(clock.Now), WithStore(store), WithStoreKey("k"))

			s, err := c.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, OriginSource, s.Origin)
			assert.Equal(t, int32(1), src.calls.Load())
			store.AssertCalled(t, "Set", "k", mock.Anything, currentCacheVersion, clock.Now().Unix())
		})
	}
}

func TestFailureFallsBackToExpiredStoreEntry(t *testing.T) {
	clock := newClock()
	ts := clock.Now().Add(-24 * time.Hour)
	store := &iocache.MockCacheStore{}
	store.On("Get", "k").Return(encoded(t, Snapshot{Matches: []schema.MatchRecord{{ID: 4}}, LoadedAt: ts}), currentCacheVersion, ts.Unix(), nil)

	src := &fakeSource{err: errors.New("timeout")}
	c := New(src, WithClock(clock.Now), WithStore(store), WithStoreKey("k"))

	s, err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrSourceFetch)
	require.NotNil(t, s)
	assert.True(t, s.Stale)
	assert.Equal(t, OriginStore, s.Origin)
	assert.Equal(t, int64(4), s.Matches[0].ID)
}

func TestRefreshRunsAreRecorded(t *testing.T) {
	history := &iocache.MockHistoryStore{}
	history.On("RecordRun", mock.MatchedBy(func(r schema.RefreshRun) bool {
		return r.Err == nil && r.Matches == 2 && r.Participations == 3 && r.Origin == OriginSource
	})).Return(int64(1), nil).Once()
	history.On("RecordRun", mock.MatchedBy(func(r schema.RefreshRun) bool {
		return r.Err != nil
	})).Return(int64(2), nil).Once()

	src := &fakeSource{rows: rawRows()}
	c := New(src, WithHistory(history), WithTTL(0))

	_, err := c.Load(context.Background())
	require.NoError(t, err)

	src.fail(errors.New("down"))
	time.Sleep(time.Millisecond)
	_, err = c.Load(context.Background())
	assert.Error(t, err)

	history.AssertExpectations(t)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("a", "b"), Key("a:b", ""))
	assert.Len(t, Key("x"), 64)
}
