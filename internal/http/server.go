package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"posjournal/internal/cache"
	"posjournal/internal/journal"
	applog "posjournal/internal/log"
	"posjournal/internal/middleware/ratelimit"
	"posjournal/internal/middleware/security"
	"posjournal/internal/middleware/trace"
	"posjournal/internal/report"
)

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 30 * time.Second
	readyTimeout     = 5 * time.Second
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	// Ready checks the storage backend for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
	// Logger is the base request logger. Defaults to the slog default.
	Logger *applog.Logger
	// Location decides which business date "today" is. Defaults to time.Local.
	Location *time.Location

	CacheSize int
	CacheTTL  time.Duration

	// DisableReportCache recomputes every dashboard. Use it when another
	// process (posctl) writes the same journal, since only writes made
	// through this server purge the cache.
	DisableReportCache bool
	RequestsPerMinute  int
}

// appMetrics tracks application-level counters
type appMetrics struct {
	salesRecorded int64
	resets        int64
	cacheHits     int64
	cacheMisses   int64
	uptime        time.Time
}

// Server is the JSON API over a journal.Service.
type Server struct {
	http.Server
	service  *journal.Service
	ready    func(ctx context.Context) error
	location *time.Location
	now      func() time.Time

	logger     *applog.Logger
	structured *applog.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	dashboardCache *cache.LRUCache[report.Dashboard]
	dashboards     *cache.Memo[report.Dashboard]

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *journal.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	dashboardCache := cache.NewLRUCache[report.Dashboard](size, ttl)
	s := &Server{
		service:          svc,
		ready:            opts.Ready,
		location:         opts.Location,
		now:              time.Now,
		logger:           logger,
		structured:       applog.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		securityDetector: security.NewDetector(),
		dashboardCache:   dashboardCache,
		appMetrics:       appMetrics{uptime: time.Now()},
	}
	if !opts.DisableReportCache {
		s.dashboards = cache.NewMemo[report.Dashboard](dashboardCache)
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, s.structured)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleRecordSale)
	mux.HandleFunc("DELETE /api/transactions", s.handleResetJournal)

	mux.HandleFunc("GET /api/reports/summary", s.handleSummary)
	mux.HandleFunc("GET /api/reports/trend", s.handleTrend)
	mux.HandleFunc("GET /api/reports/categories", s.handleCategories)
	mux.HandleFunc("GET /api/reports/top", s.handleTopSellers)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	}

	// Outermost first.
	chain := []func(http.Handler) http.Handler{
		s.traceMiddleware.Middleware,
		applog.Middleware(s.logger),
		applog.RequestIDMiddleware(trace.RequestIDFromRequest),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.securityDetector.Middleware,
		s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, onLimit, http.MethodPost, http.MethodDelete),
	}

	var h http.Handler = mux
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// Caches returns the caches a cache.Manager should clean.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.dashboardCache}
}

// invalidateReports drops every cached report after a journal change.
func (s *Server) invalidateReports() {
	if s.dashboards != nil {
		s.dashboards.Purge()
	}
}

func (s *Server) dashboard(ctx context.Context, params ReportParams) report.Dashboard {
	compute := func() (report.Dashboard, error) {
		return s.service.Dashboard(ctx, params.Period, params.Limit), nil
	}
	var (
		d   report.Dashboard
		hit bool
	)
	if s.dashboards != nil {
		d, hit, _ = s.dashboards.Get(dashboardKey(params), compute)
	} else {
		d, _ = compute()
	}
	if hit {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
	} else {
		atomic.AddInt64(&s.appMetrics.cacheMisses, 1)
	}
	applog.FromContext(ctx).DebugContext(ctx, "Dashboard computed",
		applog.FieldPeriod, params.Period,
		applog.FieldCacheHit, hit)
	return d
}

func (s *Server) today() string {
	return todayIn(s.now(), s.location)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
