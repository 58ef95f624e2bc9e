package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"fintrack/internal/chart"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Addr string

	// OwnerHeader is the trusted header carrying the authenticated owner.
	OwnerHeader string

	// ReportTimeout bounds each report, export and chart request.
	ReportTimeout time.Duration

	// ExportRateLimit is the per-owner budget of export and chart requests
	// per minute.
	ExportRateLimit int

	// Location interprets dates supplied without an offset.
	Location *time.Location

	Logger *applog.Logger
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Ledger     *services.LedgerService
	Aggregator *report.Aggregator
	Exports    *services.ExportService
	Charts     *chart.Renderer
	Health     Pinger
}

type appMetrics struct {
	uptime       time.Time
	reportCount  int64
	exportCount  int64
	chartCount   int64
	sheetsQueued int64
}

type Server struct {
	http.Server

	opts       Options
	deps       Deps
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	tracer     *trace.Middleware
	structured *applog.StructuredLogger
	metrics    *appMetrics
	now        func() time.Time
}

func NewServer(opts Options, deps Deps) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = 10 * time.Second
	}
	if opts.OwnerHeader == "" {
		opts.OwnerHeader = "X-Forwarded-User"
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	limiterCfg := ratelimit.DefaultConfig()
	if opts.ExportRateLimit > 0 {
		limiterCfg.RequestsPerMinute = opts.ExportRateLimit
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      opts.ReportTimeout + 10*time.Second,
			IdleTimeout:       120 * time.Second,
		},
		opts:       opts,
		deps:       deps,
		limiter:    ratelimit.NewLimiter(limiterCfg),
		detector:   detector,
		tracer:     trace.NewMiddleware(logger, detector.ExtractClientIP),
		structured: applog.NewStructuredLogger(logger),
		metrics:    &appMetrics{uptime: time.Now()},
		now:        time.Now,
	}

	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(headers.Middleware(detector.Middleware(mux)))

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	reportLog := applog.ComponentMiddleware(applog.ComponentReport)
	ledgerLog := applog.ComponentMiddleware(applog.ComponentLedger)

	owned := func(h http.HandlerFunc) http.Handler {
		return s.requireOwner(reportLog(h))
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return s.requireOwner(s.rateLimited(reportLog(h)))
	}
	cached := func(h http.HandlerFunc) http.Handler {
		return s.requireOwner(s.rateLimited(security.PrivateCacheMiddleware(300)(reportLog(h))))
	}
	crud := func(h http.HandlerFunc) http.Handler {
		return s.requireOwner(ledgerLog(h))
	}

	// Reports
	mux.Handle("GET /reports", owned(s.handleReport))
	mux.Handle("POST /reports", owned(s.handleReport))
	mux.Handle("GET /reports/export.csv", limited(s.handleExportCSV))
	mux.Handle("GET /reports/export.xlsx", limited(s.handleExportXLSX))
	mux.Handle("GET /reports/export.pdf", limited(s.handleExportPDF))
	mux.Handle("GET /reports/chart/bar.png", cached(s.handleBarChart))
	mux.Handle("GET /reports/chart/pie.png", cached(s.handlePieChart))
	mux.Handle("POST /reports/sheets", limited(s.handleSheetsExport))

	// Monthly summary
	mux.Handle("GET /summary", owned(s.handleSummary))
	mux.Handle("GET /summary/chart.png", cached(s.handleSummaryChart))

	// Ledger CRUD
	mux.Handle("GET /api/categories", crud(s.handleListCategories))
	mux.Handle("POST /api/categories", crud(s.handleCreateCategory))
	mux.Handle("GET /api/categories/{id}", crud(s.handleGetCategory))
	mux.Handle("PUT /api/categories/{id}", crud(s.handleRenameCategory))
	mux.Handle("DELETE /api/categories/{id}", crud(s.handleDeleteCategory))

	for _, res := range []transactionResource{incomesResource, expensesResource} {
		mux.Handle("GET /api/"+res.path, crud(s.handleListTransactions(res.kind)))
		mux.Handle("POST /api/"+res.path, crud(s.handleCreateTransaction(res.kind)))
		mux.Handle("GET /api/"+res.path+"/{id}", crud(s.handleGetTransaction(res.kind)))
		mux.Handle("PUT /api/"+res.path+"/{id}", crud(s.handleUpdateTransaction(res.kind)))
		mux.Handle("DELETE /api/"+res.path+"/{id}", crud(s.handleDeleteTransaction(res.kind)))
	}
}

func (s *Server) requireOwner(next http.Handler) http.Handler {
	return auth.Middleware(s.opts.OwnerHeader, func(w http.ResponseWriter, r *http.Request) {
		UnauthorizedError().Write(w)
	})(next)
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return s.limiter.Middleware(ownerKey, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(next)
}

// ownerKey keys the rate limiter by the authenticated owner.
func ownerKey(r *http.Request) string {
	owner, _ := auth.OwnerFromContext(r.Context())
	return owner
}

// reportContext bounds a report computation by the configured timeout.
func (s *Server) reportContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.opts.ReportTimeout)
}

// Shutdown stops background work and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) countReport() { atomic.AddInt64(&s.metrics.reportCount, 1) }
func (s *Server) countExport() { atomic.AddInt64(&s.metrics.exportCount, 1) }
func (s *Server) countChart() { atomic.AddInt64(&s.metrics.chartCount, 1) }
func (s *Server) countQueued() { atomic.AddInt64(&s.metrics.sheetsQueued, 1) }
