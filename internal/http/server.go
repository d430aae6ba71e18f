// Package http exposes the budget engine as a JSON API. All state
// mutations go through the engine; persistence happens only on an
// explicit save, which snapshots the full state.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pockets/internal/cache"
	"pockets/internal/core"
	"pockets/internal/engine"
	applog "pockets/internal/log"
)

// SnapshotStore is the persistence surface the server needs.
type SnapshotStore interface {
	Save(ctx context.Context, profile string, state *core.BudgetState) (int64, error)
	Load(ctx context.Context, profile string) (*core.BudgetState, int64, error)
	Prune(ctx context.Context, profile string, keep int) (int64, error)
}

// SnapshotPublisher announces persisted snapshots to the export
// pipeline. A nil publisher disables announcements.
type SnapshotPublisher interface {
	PublishSnapshotSaved(ctx context.Context, profile string, revision int64) error
}

type Server struct {
	http.Server
	engine      *engine.Engine
	store       SnapshotStore
	publisher   SnapshotPublisher
	rateLimiter *mutationLimiter
	metrics     *securityMetrics

	profile       string
	snapshotsKept int

	// Month computations are cached until the next mutation.
	totalsCache *cache.LRUCache[core.Totals]

	shutdownOnce sync.Once
}

// Options tune server behavior beyond the required dependencies.
type Options struct {
	Profile         string
	SnapshotsKept   int
	TotalsCacheSize int
	TotalsCacheTTL  time.Duration

	// Mutation rate limiting per client IP. GET requests are exempt.
	MutationRateLimit  int
	MutationRateWindow time.Duration
}

func (o *Options) fillDefaults() {
	if o.Profile == "" {
		o.Profile = "default"
	}
	if o.SnapshotsKept < 1 {
		o.SnapshotsKept = 50
	}
	if o.TotalsCacheSize < 1 {
		o.TotalsCacheSize = 128
	}
	if o.TotalsCacheTTL <= 0 {
		o.TotalsCacheTTL = 5 * time.Minute
	}
	if o.MutationRateLimit < 1 {
		o.MutationRateLimit = 60
	}
	if o.MutationRateWindow <= 0 {
		o.MutationRateWindow = time.Minute
	}
}

// NewServer configures routes and returns a ready-to-run server.
// The publisher may be nil.
func NewServer(addr string, eng *engine.Engine, store SnapshotStore, publisher SnapshotPublisher, opts Options) *Server {
	opts.fillDefaults()

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		engine:        eng,
		store:         store,
		publisher:     publisher,
		rateLimiter:   newMutationLimiter(opts.MutationRateLimit, opts.MutationRateWindow),
		metrics:       &securityMetrics{},
		profile:       opts.Profile,
		snapshotsKept: opts.SnapshotsKept,
		totalsCache:   cache.NewLRUCache[core.Totals](opts.TotalsCacheSize, opts.TotalsCacheTTL),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/state", s.withSecurityHeaders(s.handleState))
	mux.HandleFunc("/api/categories", s.withSecurityHeaders(s.handleCategories))
	mux.HandleFunc("/api/months", s.withSecurityHeaders(s.handleMonths))
	mux.HandleFunc("/api/override", s.withSecurityHeaders(s.handleOverride))
	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/api/totals", s.withSecurityHeaders(s.handleTotals))
	mux.HandleFunc("/api/balances", s.withSecurityHeaders(s.handleBalances))
	mux.HandleFunc("/api/projection", s.withSecurityHeaders(s.handleProjection))
	mux.HandleFunc("/api/tips", s.withSecurityHeaders(s.handleTips))
	mux.HandleFunc("/api/insights", s.withSecurityHeaders(s.handleInsights))
	mux.HandleFunc("/api/allocation-rules", s.withSecurityHeaders(s.handleAllocationRules))
	mux.HandleFunc("/api/save", s.withSecurityHeaders(s.handleSave))

	// Every request carries a component logger stamped with its id.
	httpLogger := applog.New(applog.Config{
		Handler:   slog.Default().Handler(),
		Component: applog.ComponentHTTP,
	})
	s.Server.Handler = applog.Middleware(httpLogger)(
		applog.RequestIDMiddleware(func(*http.Request) string {
			return generateRequestID()
		})(mux))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateComputed drops every cached computation. Called after any
// state mutation; the whole cache goes because an override or
// transaction in one month can shift projections for others.
func (s *Server) invalidateComputed() {
	s.totalsCache.Purge()
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		clientIP := extractClientIP(r)
		logger := applog.FromContext(ctx)
		sl := applog.NewStructuredLogger(logger)

		sl.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request pattern",
				applog.FieldClientIP, clientIP,
				"url", r.URL.String())
		}

		// Rate limit mutations only; reads are cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(s.rateLimiter.retryAfterSeconds()))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		sl.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
