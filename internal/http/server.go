// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Options configures a Server.
type Options struct {
	Addr       string
	Ledger     *services.LedgerService
	Aggregator *services.Aggregator
	Logger     *applog.Logger

	RateLimitPerMinute int
	CacheTTL           time.Duration
	CacheMaxEntries    int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	http.Server

	ledger     *services.LedgerService
	aggregator *services.Aggregator

	rateLimiter  *ratelimit.Limiter
	ipResolver   *security.ClientIPResolver
	chartCache   *cache.LRUCache[core.ChartData]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheMaxEntries <= 0 {
		opts.CacheMaxEntries = 1000
	}

	s := &Server{
		ledger:     opts.Ledger,
		aggregator: opts.Aggregator,
		ipResolver: security.NewClientIPResolver(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		chartCache:   cache.NewLRUCache[core.ChartData](opts.CacheMaxEntries, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.chartCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/summary", withUser(s.handleSummary))
	mux.HandleFunc("GET /api/reports/savings", withUser(s.handleSavingsReport))

	mux.HandleFunc("GET /api/income", withUser(s.handleListIncome))
	mux.HandleFunc("POST /api/income", withUser(s.handleAddIncome))
	mux.HandleFunc("POST /api/income/update", withUser(s.handleUpdateIncome))
	mux.HandleFunc("POST /api/income/delete", withUser(s.handleDeleteIncome))
	mux.HandleFunc("POST /api/salary", withUser(s.handleUpsertSalary))

	mux.HandleFunc("GET /api/expenses", withUser(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", withUser(s.handleAddExpense))
	mux.HandleFunc("POST /api/expenses/update", withUser(s.handleUpdateExpense))
	mux.HandleFunc("POST /api/expenses/delete", withUser(s.handleDeleteExpense))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.ipResolver.ExtractClientIP)

	var handler http.Handler = mux
	handler = s.limitMutations(handler)
	handler = tracer.Middleware(handler)
	handler = headers.Middleware(handler)
	if opts.Logger != nil {
		handler = applog.Middleware(opts.Logger.WithComponent(applog.ComponentHTTP))(handler)
	}

	s.Server = http.Server{
		Addr:         opts.Addr,
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// limitMutations rate limits writes only; reads stay cheap because the
// chart cache already absorbs them.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.ipResolver.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background routines before closing the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateCharts drops the user's cached aggregates after a mutation.
func (s *Server) invalidateCharts(userID int64) {
	s.chartCache.DeletePrefix(chartKeyPrefix(userID))
}

func chartKeyPrefix(userID int64) string {
	return fmt.Sprintf("user:%d:", userID)
}

func chartKey(userID int64, kind, rangeName string) string {
	return fmt.Sprintf("%s%s:%s", chartKeyPrefix(userID), kind, rangeName)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
