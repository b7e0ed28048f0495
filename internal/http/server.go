package http

import (
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jennet-zamanova/travel-ai/internal/metrics"
	"github.com/jennet-zamanova/travel-ai/internal/reels"
	"github.com/jennet-zamanova/travel-ai/internal/trip"
)

// Options configures the HTTP server wiring.
type Options struct {
	TripService trip.Service
	Reels       reels.Processor
	Database    *gorm.DB
	Logger      *logrus.Logger
	SentryHub   *sentry.Hub
	Metrics     *metrics.Collector
	RateLimiter RateLimiterSettings
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the HTTP transport layer via Huma and templ components.
type Server struct {
	api         huma.API
	mux         *stdhttp.ServeMux
	trips       trip.Service
	reels       reels.Processor
	logger      *logrus.Logger
	sentry      *sentry.Hub
	db          *gorm.DB
	metrics     *metrics.Collector
	rateLimiter *RateLimiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.TripService == nil {
		return nil, eris.New("trip service is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	if opts.Reels == nil {
		opts.Reels = reels.UnimplementedProcessor{}
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Travel AI", "1.0.0")

	api := humago.New(mux, config)

	srv := &Server{
		api:     api,
		mux:     mux,
		trips:   opts.TripService,
		reels:   opts.Reels,
		logger:  opts.Logger,
		sentry:  opts.SentryHub,
		db:      opts.Database,
		metrics: opts.Metrics,
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	srv.rateLimiter = NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL)

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// Close releases background resources held by the transport layer.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /favicon.ico", faviconHandler)
	s.mux.HandleFunc("HEAD /favicon.ico", faviconHandler)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	s.registerHomeRoute()
	s.registerPlansRoute()
	s.registerRecommendationsRoute()
	s.registerBudgetRoute()
	s.registerItineraryRoute()
	s.registerReelsRoute()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
