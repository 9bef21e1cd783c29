package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/app"
	"github.com/kailas-cloud/hybridsearch/internal/config"
	logpkg "github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
	documentrepo "github.com/kailas-cloud/hybridsearch/internal/repository/document"
	searchrepo "github.com/kailas-cloud/hybridsearch/internal/repository/search"
	"github.com/kailas-cloud/hybridsearch/internal/tracing"
	chiTransport "github.com/kailas-cloud/hybridsearch/internal/transport/chi"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/hybridsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/hybridsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
	"github.com/kailas-cloud/hybridsearch/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hybridsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    "hybridsearch",
		ServiceVersion: version.Version,
		Environment:    env,
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	store, err := app.OpenStore(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer store.Close()

	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	base := app.NewProvider(&cfg, logger)
	cache, err := app.NewEmbeddingCache(&cfg, store)
	if err != nil {
		logger.Fatal("Failed to create embedding cache", zap.Error(err))
	}
	queryEmbedder := app.BuildEmbedder(base, cache, &cfg, embeddinguc.PurposeQuery, logger)
	docEmbedder := app.BuildEmbedder(base, cache, &cfg, embeddinguc.PurposeDocument, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("cache", cfg.Embedding.Cache.Driver),
	)

	searchSvc := searchuc.New(searchrepo.New(store), queryEmbedder, searchuc.Config{
		RRFK:            cfg.Search.RRFK,
		OverfetchFactor: cfg.Search.OverfetchFactor,
		Timeout:         cfg.SearchTimeout(),
	}).WithTracerProvider(tp.TracerProvider())

	docSvc, err := documentuc.New(
		documentrepo.New(store), docEmbedder, cfg.Embedding.Dimensions, cfg.Ingest.Workers, logger,
	)
	if err != nil {
		logger.Fatal("Failed to create document service", zap.Error(err))
	}
	defer docSvc.Release()

	healthSvc := healthuc.New(store, app.NewEmbeddingHealthChecker(queryEmbedder), logger)

	server := chiTransport.NewServer(searchSvc, docSvc, healthSvc, logger)
	handler := newRouter(&cfg, server, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newRouter assembles the middleware stack around the API routes.
func newRouter(cfg *config.Config, server *chiTransport.Server, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Embedding-Tokens", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != chiTransport.PathMetrics
		}),
	)
}
