package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/metrics"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
)

// DefaultTTL is how long a mastered-words projection stays cached.
const DefaultTTL = time.Hour

// DefaultLoadTimeout bounds a shared load. The load is detached from the
// cancellation of the caller that started it.
const DefaultLoadTimeout = 30 * time.Second

// MasteredWordsKey returns the cache key for a learner's mastered words.
func MasteredWordsKey(learnerID uuid.UUID) string {
	return "mastered_words:" + learnerID.String()
}

// Loader reads a learner's mastered words from the system of record.
type Loader func(ctx context.Context) ([]domain.MasteredWord, error)

// Coordinator is a read-through cache of mastered-word projections.
//
// Concurrent misses for one learner share a single load. A load that
// started before an Invalidate for the same learner is returned to its
// callers but not written back, so invalidations are never undone.
type Coordinator struct {
	store       Store
	ttl         time.Duration
	loadTimeout time.Duration
	logger      *slog.Logger
	group       singleflight.Group

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight tracks one shared load. stale is set when the key is invalidated
// while the load runs.
type flight struct {
	stale bool
}

// NewCoordinator creates a Coordinator over store. A non-positive ttl uses
// DefaultTTL and a nil logger uses slog.Default().
func NewCoordinator(store Store, ttl time.Duration, log *slog.Logger) *Coordinator {
	if store == nil {
		panic("store cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		store:       store,
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		logger:      log.With(slog.String("component", "cache_coordinator")),
		inflight:    make(map[string]*flight),
	}
}

// MasteredWords returns the learner's cached projection, calling load on a
// miss and caching its result. Cache errors degrade to a miss. Errors from
// load are returned unchanged and nothing is cached.
//
// A caller whose ctx ends stops waiting without affecting other callers
// sharing the same load.
func (c *Coordinator) MasteredWords(
	ctx context.Context,
	learnerID uuid.UUID,
	load Loader,
) ([]domain.MasteredWord, error) {
	key := MasteredWordsKey(learnerID)
	log := logger.FromContextOrDefault(ctx, c.logger)

	if words, ok := c.lookup(ctx, log, key); ok {
		metrics.CacheHits.Inc()
		return words, nil
	}
	metrics.CacheMisses.Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		return c.loadAndStore(loadCtx, log, key, load)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		if !isContextError(res.Err) || ctx.Err() != nil {
			return nil, res.Err
		}
		log.Warn("shared load timed out, loading directly",
			slog.String("key", key),
			slog.String("error", res.Err.Error()))
		words, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if words == nil {
			words = []domain.MasteredWord{}
		}
		return words, nil
	}

	shared := res.Val.([]domain.MasteredWord)
	out := make([]domain.MasteredWord, len(shared))
	copy(out, shared)
	return out, nil
}

// Invalidate drops the learner's cached projection. Call it after every
// committed mastery write.
func (c *Coordinator) Invalidate(ctx context.Context, learnerID uuid.UUID) {
	key := MasteredWordsKey(learnerID)

	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		f.stale = true
	}
	c.mu.Unlock()
	c.group.Forget(key)

	metrics.CacheInvalidations.Inc()
	if err := c.store.Delete(ctx, key); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("failed to invalidate cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) loadAndStore(
	ctx context.Context,
	log *slog.Logger,
	key string,
	load Loader,
) ([]domain.MasteredWord, error) {
	f := c.begin(key)

	words, err := load(ctx)
	if err != nil {
		c.finish(key, f)
		return nil, err
	}
	if words == nil {
		words = []domain.MasteredWord{}
	}

	if c.isStale(f) {
		c.finish(key, f)
		log.Debug("skipping cache write after concurrent invalidation",
			slog.String("key", key))
		return words, nil
	}

	c.save(ctx, log, key, words)
	if c.finish(key, f) {
		// Invalidated between the check and the write.
		_ = c.store.Delete(ctx, key)
	}
	return words, nil
}

func (c *Coordinator) lookup(ctx context.Context, log *slog.Logger, key string) ([]domain.MasteredWord, bool) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var words []domain.MasteredWord
	if err := json.Unmarshal(raw, &words); err != nil {
		log.Warn("discarding undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		_ = c.store.Delete(ctx, key)
		return nil, false
	}
	if words == nil {
		words = []domain.MasteredWord{}
	}
	return words, true
}

func (c *Coordinator) save(ctx context.Context, log *slog.Logger, key string, words []domain.MasteredWord) {
	raw, err := json.Marshal(words)
	if err != nil {
		log.Error("failed to encode cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		log.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func (c *Coordinator) begin(key string) *flight {
	f := &flight{}
	c.mu.Lock()
	c.inflight[key] = f
	c.mu.Unlock()
	return f
}

func (c *Coordinator) isStale(f *flight) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f.stale
}

// finish removes f from the in-flight set and reports whether it went stale.
func (c *Coordinator) finish(key string, f *flight) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] == f {
		delete(c.inflight, key)
	}
	return f.stale
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
