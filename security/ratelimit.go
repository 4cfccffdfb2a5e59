package security

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMaxTrackedClients bounds the number of per-client limiters kept in memory.
	DefaultMaxTrackedClients = 10000

	defaultSweepInterval = 5 * time.Minute
	defaultIdleTimeout   = 30 * time.Minute
)

type clientBucket struct {
	key      string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client key (usually the client IP) with a
// token bucket per key. The least recently seen key is evicted once
// maxClients keys are tracked.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*list.Element
	order      *list.List
	limit      rate.Limit
	burst      int
	maxClients int
	logger     *slog.Logger

	evictions int64
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewRateLimiter creates a limiter allowing requestsPerSecond per key with the
// given burst, tracking at most DefaultMaxTrackedClients keys.
func NewRateLimiter(requestsPerSecond, burst int, logger *slog.Logger) *RateLimiter {
	return NewRateLimiterWithCapacity(requestsPerSecond, burst, DefaultMaxTrackedClients, logger)
}

// NewRateLimiterWithCapacity is NewRateLimiter with an explicit key capacity.
// A capacity of 0 disables eviction.
func NewRateLimiterWithCapacity(requestsPerSecond, burst, maxClients int, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if maxClients < 0 {
		logger.Warn("Invalid rate limiter capacity, using default", "capacity", maxClients)
		maxClients = DefaultMaxTrackedClients
	}

	rl := &RateLimiter{
		buckets:    make(map[string]*list.Element),
		order:      list.New(),
		limit:      rate.Limit(requestsPerSecond),
		burst:      burst,
		maxClients: maxClients,
		logger:     logger,
		stop:       make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elem, ok := rl.buckets[key]; ok {
		rl.order.MoveToFront(elem)
		b := elem.Value.(*clientBucket)
		b.lastSeen = now
		return b.limiter.Allow()
	}

	if rl.maxClients > 0 && len(rl.buckets) >= rl.maxClients {
		rl.evictOldest()
	}

	b := &clientBucket{
		key:      key,
		limiter:  rate.NewLimiter(rl.limit, rl.burst),
		lastSeen: now,
	}
	rl.buckets[key] = rl.order.PushFront(b)
	return b.limiter.Allow()
}

// evictOldest must be called with mu held.
func (rl *RateLimiter) evictOldest() {
	elem := rl.order.Back()
	if elem == nil {
		return
	}
	b := elem.Value.(*clientBucket)
	rl.order.Remove(elem)
	delete(rl.buckets, b.key)
	rl.evictions++
	rl.logger.Debug("Rate limiter evicted client", "tracked", len(rl.buckets), "evictions", rl.evictions)
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Sweep(defaultIdleTimeout)
		case <-rl.stop:
			return
		}
	}
}

// Sweep drops limiters that have been idle longer than maxIdle.
func (rl *RateLimiter) Sweep(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for elem := rl.order.Back(); elem != nil; {
		prev := elem.Prev()
		b := elem.Value.(*clientBucket)
		if !b.lastSeen.Before(cutoff) {
			// the list is ordered by recency, everything in front is newer
			break
		}
		rl.order.Remove(elem)
		delete(rl.buckets, b.key)
		removed++
		elem = prev
	}
	if removed > 0 {
		rl.logger.Debug("Rate limiter sweep completed", "removed", removed, "remaining", len(rl.buckets))
	}
	return removed
}

// Stop terminates the background sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Stats is a point-in-time view of the limiter for monitoring.
type Stats struct {
	TrackedClients int
	MaxClients     int
	Evictions      int64
}

// Stats returns the current limiter statistics.
func (rl *RateLimiter) Stats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return Stats{
		TrackedClients: len(rl.buckets),
		MaxClients:     rl.maxClients,
		Evictions:      rl.evictions,
	}
}
