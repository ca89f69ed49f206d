package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"contas/internal/cache"
	"contas/internal/middleware/ratelimit"
	"contas/internal/middleware/security"
	"contas/internal/middleware/trace"
	"contas/internal/services"
)

// Deps bundles the services the API serves.
type Deps struct {
	Ledger     *services.Ledger
	Accounts   *services.AccountService
	Categories *services.CategoryService
	Goals      *services.GoalService
	Recurring  *services.RecurringProcessor
	Seeder     *services.Seeder
}

// Options tune server behavior beyond the defaults.
type Options struct {
	CacheTTL          time.Duration
	CacheMaxSize      int
	RequestsPerMinute int
}

func defaultOptions() Options {
	return Options{
		CacheTTL:          30 * time.Second,
		CacheMaxSize:      1000,
		RequestsPerMinute: 60,
	}
}

type Server struct {
	http.Server
	deps Deps

	// Dashboard snapshots are cached per owner and dropped on any
	// transaction or account mutation.
	dashboardCache *cache.LRUCache[services.DashboardData]
	cacheManager   *cache.Manager

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultOptions().CacheTTL
	}
	if opts.CacheMaxSize <= 0 {
		opts.CacheMaxSize = defaultOptions().CacheMaxSize
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = defaultOptions().RequestsPerMinute
	}

	s := &Server{
		deps:           deps,
		dashboardCache: cache.NewLRUCache[services.DashboardData](opts.CacheMaxSize, opts.CacheTTL),
		cacheManager:   cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		tracer: trace.NewMiddleware(clientIPFromRequest),
	}
	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.withOwner(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withOwner(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withOwner(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withOwner(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/accounts", s.withOwner(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.withOwner(s.handleSaveAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withOwner(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/categories", s.withOwner(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withOwner(s.handleSaveCategory))
	mux.HandleFunc("PUT /api/categories/{id}/budget", s.withOwner(s.handleUpdateBudget))
	mux.HandleFunc("GET /api/suggestions", s.withOwner(s.handleSuggestCategory))

	mux.HandleFunc("GET /api/goals", s.withOwner(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withOwner(s.handleAddGoal))
	mux.HandleFunc("POST /api/goals/{id}/deposits", s.withOwner(s.handleGoalDeposit))

	mux.HandleFunc("GET /api/recurring", s.withOwner(s.handleListRecurring))
	mux.HandleFunc("POST /api/recurring", s.withOwner(s.handleAddRecurring))
	mux.HandleFunc("POST /api/recurring/process", s.withOwner(s.handleProcessRecurring))

	mux.HandleFunc("GET /api/dashboard", s.withOwner(s.handleDashboard))
	mux.HandleFunc("GET /api/reports/monthly", s.withOwner(s.handleMonthlyHistory))
	mux.HandleFunc("GET /api/reports/categories", s.withOwner(s.handleExpensesByCategory))
	mux.HandleFunc("GET /api/alerts", s.withOwner(s.handleAlerts))

	mux.HandleFunc("POST /api/seed", s.withOwner(s.handleSeed))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	rateLimited := s.limiter.Middleware(clientIPFromRequest, nil)

	var handler http.Handler = mux
	handler = rateLimited(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.tracer.GetMetrics()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{
		"total_requests":       m.TotalRequests,
		"avg_response_time_us": m.AverageResponseTime,
		"rate_limited_clients": int64(s.limiter.ActiveClients()),
	})
}

// clientIPFromRequest honors forwarding headers before falling back to
// the socket address.
func clientIPFromRequest(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
