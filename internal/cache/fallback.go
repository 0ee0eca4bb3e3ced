package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/phrazzld/wordpath-api/internal/metrics"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
)

// FallbackConfig tunes a FallbackStore.
type FallbackConfig struct {
	// OpTimeout bounds every call to the primary store.
	OpTimeout time.Duration

	// FailureThreshold is the number of consecutive primary failures that
	// opens the breaker.
	FailureThreshold uint32

	// Cooldown is how long the breaker stays open before probing the primary.
	Cooldown time.Duration
}

// DefaultFallbackConfig returns the settings used when none are configured.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		OpTimeout:        250 * time.Millisecond,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	}
}

type getResult struct {
	value []byte
	found bool
}

// FallbackStore serves from a primary Store behind a circuit breaker and
// falls back to a MemoryStore whenever the primary fails, times out or the
// breaker is open. It never returns an error.
//
// Deletes that fail on the primary are remembered and retried before later
// operations. Until a retry succeeds the key reads as a miss, so a value
// invalidated during an outage is not served once the primary comes back.
type FallbackStore struct {
	primary   Store
	memory    *MemoryStore
	breaker   *gobreaker.CircuitBreaker[any]
	opTimeout time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

var _ Store = (*FallbackStore)(nil)

// NewFallbackStore wraps primary. The logger defaults to slog.Default().
func NewFallbackStore(primary Store, memory *MemoryStore, cfg FallbackConfig, log *slog.Logger) *FallbackStore {
	if primary == nil {
		panic("primary cannot be nil")
	}
	if memory == nil {
		memory = NewMemoryStore()
	}
	if log == nil {
		log = slog.Default()
	}
	def := DefaultFallbackConfig()
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = def.OpTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}

	log = log.With(slog.String("component", "cache_fallback"))
	name := "cache-primary"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("cache breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &FallbackStore{
		primary:   primary,
		memory:    memory,
		breaker:   breaker,
		opTimeout: cfg.OpTimeout,
		logger:    log,
		pending:   make(map[string]struct{}),
	}
}

// Get implements Store.
func (f *FallbackStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.replayPending(ctx)
	if f.isPending(key) {
		return nil, false, nil
	}

	res, err := f.call(ctx, func(ctx context.Context) (any, error) {
		value, found, err := f.primary.Get(ctx, key)
		return getResult{value: value, found: found}, err
	})
	if err != nil {
		f.degraded(ctx, "get", key, err)
		return f.memory.Get(ctx, key)
	}

	r := res.(getResult)
	return r.value, r.found, nil
}

// Set implements Store. The value is always written to memory as well so it
// survives a later primary outage.
func (f *FallbackStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = f.memory.Set(ctx, key, value, ttl)

	f.replayPending(ctx)
	if f.isPending(key) {
		return nil
	}

	_, err := f.call(ctx, func(ctx context.Context) (any, error) {
		return nil, f.primary.Set(ctx, key, value, ttl)
	})
	if err != nil {
		f.degraded(ctx, "set", key, err)
	}
	return nil
}

// Delete implements Store.
func (f *FallbackStore) Delete(ctx context.Context, key string) error {
	_ = f.memory.Delete(ctx, key)

	_, err := f.call(ctx, func(ctx context.Context) (any, error) {
		return nil, f.primary.Delete(ctx, key)
	})
	if err != nil {
		f.degraded(ctx, "delete", key, err)
		f.mu.Lock()
		f.pending[key] = struct{}{}
		f.mu.Unlock()
	}
	return nil
}

// Ping reports the primary's reachability through the breaker. The store
// keeps serving from memory regardless, so callers use this for health
// reporting only.
func (f *FallbackStore) Ping(ctx context.Context) error {
	_, err := f.call(ctx, func(ctx context.Context) (any, error) {
		return nil, f.primary.Ping(ctx)
	})
	return err
}

// Pending returns the number of deletes waiting to reach the primary.
func (f *FallbackStore) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *FallbackStore) call(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	return f.breaker.Execute(func() (any, error) {
		opCtx, cancel := context.WithTimeout(ctx, f.opTimeout)
		defer cancel()
		return fn(opCtx)
	})
}

func (f *FallbackStore) isPending(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[key]
	return ok
}

func (f *FallbackStore) replayPending(ctx context.Context) {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(f.pending))
	for key := range f.pending {
		keys = append(keys, key)
	}
	f.mu.Unlock()

	for _, key := range keys {
		_, err := f.call(ctx, func(ctx context.Context) (any, error) {
			return nil, f.primary.Delete(ctx, key)
		})
		if err != nil {
			// Primary still unavailable; leave the rest for the next call.
			return
		}
		f.mu.Lock()
		delete(f.pending, key)
		f.mu.Unlock()
		logger.FromContextOrDefault(ctx, f.logger).Info("replayed cache invalidation",
			slog.String("key", key))
	}
}

func (f *FallbackStore) degraded(ctx context.Context, op, key string, err error) {
	metrics.CacheFallbacks.WithLabelValues(op).Inc()

	log := logger.FromContextOrDefault(ctx, f.logger)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Debug("cache primary bypassed",
			slog.String("operation", op),
			slog.String("key", key))
		return
	}
	log.Warn("cache primary failed, using memory",
		slog.String("operation", op),
		slog.String("key", key),
		slog.String("error", err.Error()))
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
