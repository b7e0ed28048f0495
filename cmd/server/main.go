package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jennet-zamanova/travel-ai/internal/config"
	appdb "github.com/jennet-zamanova/travel-ai/internal/db"
	apphttp "github.com/jennet-zamanova/travel-ai/internal/http"
	"github.com/jennet-zamanova/travel-ai/internal/llm"
	applog "github.com/jennet-zamanova/travel-ai/internal/log"
	"github.com/jennet-zamanova/travel-ai/internal/metrics"
	"github.com/jennet-zamanova/travel-ai/internal/trip"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	dbConn, err := appdb.Open(appdb.Options{Path: cfg.DBPath})
	if err != nil {
		return eris.Wrap(err, "opening database")
	}
	defer func() {
		if closeErr := appdb.Close(dbConn); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	if err := trip.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running migrations")
	}

	repository, err := trip.NewRepository(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building trip repository")
	}

	client, err := llm.NewClient(llm.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Logger:  logger,
	})
	if err != nil {
		return eris.Wrap(err, "creating llm client")
	}

	if len(cfg.LLMModels) == 0 {
		return eris.New("LLM_MODELS must include at least one model name")
	}

	recommenderModel := cfg.LLMModels[0]
	budgeterModel := recommenderModel
	if len(cfg.LLMModels) > 1 {
		budgeterModel = cfg.LLMModels[1]
	}
	plannerModel := recommenderModel
	if len(cfg.LLMModels) > 2 {
		plannerModel = cfg.LLMModels[2]
	}

	recommender, err := llm.NewRecommender(llm.RecommenderOptions{
		Client: client,
		Model:  recommenderModel,
	})
	if err != nil {
		return eris.Wrap(err, "initialising recommender")
	}

	budgeter, err := llm.NewBudgeter(llm.BudgeterOptions{
		Client: client,
		Model:  budgeterModel,
	})
	if err != nil {
		return eris.Wrap(err, "initialising budgeter")
	}

	planner, err := llm.NewPlanner(llm.PlannerOptions{
		Client: client,
		Model:  plannerModel,
	})
	if err != nil {
		return eris.Wrap(err, "initialising planner")
	}

	collector := metrics.NewCollector()

	tripService, err := trip.NewService(repository, recommender, budgeter, planner, logger, sentryHub, collector)
	if err != nil {
		return eris.Wrap(err, "creating trip service")
	}

	transport, err := apphttp.NewServer(apphttp.Options{
		TripService: tripService,
		Database:    dbConn,
		Logger:      logger,
		SentryHub:   sentryHub,
		Metrics:     collector,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
			ClientTTL:         cfg.RateLimitTTL,
		},
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}
	defer transport.Close()

	httpServer := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler: transport.Handler(),
	}

	logger.WithFields(logrus.Fields{
		"addr": httpServer.Addr,
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	logger.Info("http server shut down cleanly")
	return nil
}
