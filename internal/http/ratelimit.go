package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// mutationLimiter throttles state-changing requests per client IP.
// Reads are never throttled: budget queries are cheap and cached, but
// a runaway client writing overrides or transactions churns state and
// snapshots, so only mutations count against the window.
type mutationLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientWindow
	limit        int
	window       time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// clientWindow counts one client's mutations in its current window.
type clientWindow struct {
	windowStart time.Time
	mutations   int
}

func newMutationLimiter(limit int, window time.Duration) *mutationLimiter {
	if limit < 1 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	ml := &mutationLimiter{
		clients:     make(map[string]*clientWindow),
		limit:       limit,
		window:      window,
		stopCleanup: make(chan struct{}),
	}
	go ml.startCleanup()
	return ml
}

// startCleanup periodically drops clients that have gone quiet. The
// sweep runs several windows apart so an active client is never
// evicted mid-window.
func (ml *mutationLimiter) startCleanup() {
	ticker := time.NewTicker(5 * ml.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ml.cleanupStale(time.Now())
		case <-ml.stopCleanup:
			return
		}
	}
}

// cleanupStale removes clients whose last window started long before now.
func (ml *mutationLimiter) cleanupStale(now time.Time) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	cutoff := now.Add(-10 * ml.window)
	for ip, client := range ml.clients {
		if client.windowStart.Before(cutoff) {
			delete(ml.clients, ip)
		}
	}
}

// stop shuts down the cleanup goroutine.
func (ml *mutationLimiter) stop() {
	ml.shutdownOnce.Do(func() {
		if ml.stopCleanup != nil {
			close(ml.stopCleanup)
		}
	})
}

// allow reports whether one more mutation from the IP fits in its
// current window. Windows are fixed, anchored at the first mutation
// after the previous window expired.
func (ml *mutationLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := time.Now()
	client, ok := ml.clients[clientIP]
	if !ok || now.Sub(client.windowStart) >= ml.window {
		ml.clients[clientIP] = &clientWindow{windowStart: now, mutations: 1}
		return true
	}

	client.mutations++
	if client.mutations > ml.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// retryAfterSeconds is the Retry-After hint for throttled clients.
func (ml *mutationLimiter) retryAfterSeconds() int {
	secs := int(ml.window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
