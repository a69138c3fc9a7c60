package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/evidentbank/router/cmd/router/internal/handlers"
	"github.com/evidentbank/router/cmd/router/internal/middleware"
	"github.com/evidentbank/router/internal/config"
	"github.com/evidentbank/router/internal/convstate"
	"github.com/evidentbank/router/internal/embeddings"
	"github.com/evidentbank/router/internal/faqindex"
	"github.com/evidentbank/router/internal/health"
	"github.com/evidentbank/router/internal/llmclient"
	"github.com/evidentbank/router/internal/productstore"
	"github.com/evidentbank/router/internal/registry"
	"github.com/evidentbank/router/internal/router"
	"github.com/evidentbank/router/internal/tracing"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := tracing.Initialize(tracing.Config{
		Enabled:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		ServiceName:  "evidence-router",
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, logger); err != nil {
		logger.Warn("tracing initialization failed, continuing without spans", zap.Error(err))
	}

	store, err := productstore.New(cfg.ProductStore, logger)
	if err != nil {
		logger.Fatal("failed to connect to product store", zap.Error(err))
	}
	defer store.Close()

	convo, err := convstate.New(cfg.ConvState, logger)
	if err != nil {
		logger.Fatal("failed to connect to conversation state store", zap.Error(err))
	}
	defer convo.Close()

	var embedCache embeddings.EmbeddingCache
	if cfg.Embeddings.EnableRedis {
		redisCache, err := embeddings.NewRedisCache(cfg.Embeddings.RedisAddr)
		if err != nil {
			logger.Warn("embedding redis cache unavailable, falling back to LRU-only", zap.Error(err))
		} else {
			embedCache = redisCache
		}
	}
	embeddings.Initialize(cfg.Embeddings, embedCache)
	embedder := embeddings.Get()
	if embedder == nil {
		logger.Fatal("embedding service failed to initialize")
	}

	faq := faqindex.New(cfg.FAQIndex, embedder, logger)

	llm := llmclient.New(cfg.LLM, logger)

	reg := registry.New(store, cfg.Registry, logger)

	rc := &router.Context{
		Store:    store,
		FAQ:      faq,
		Convo:    convo,
		Registry: reg,
		LLM:      llm,
		Config:   cfg.RouterTunables(),
		Logger:   logger,
	}

	healthMgr := health.NewManager(logger)
	_ = healthMgr.RegisterChecker(health.NewDatabaseHealthChecker(store.DB(), store.Wrapper(), logger))
	_ = healthMgr.RegisterChecker(health.NewRedisHealthChecker(convo.Client(), convo.Wrapper(), logger))
	_ = healthMgr.RegisterChecker(health.NewFAQIndexHealthChecker(
		fmt.Sprintf("http://%s:%d", cfg.FAQIndex.Host, cfg.FAQIndex.Port), logger))
	_ = healthMgr.RegisterChecker(health.NewLLMServiceHealthChecker(cfg.LLM.BaseURL, logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := healthMgr.Start(ctx); err != nil {
		logger.Warn("health manager failed to start", zap.Error(err))
	}
	defer healthMgr.Stop()

	mux := http.NewServeMux()
	mux.Handle("/api/v1/route", handlers.NewRouteHandler(rc, logger))
	health.NewHTTPHandler(healthMgr, logger).RegisterRoutes(mux)

	var chain http.Handler = mux
	chain = middleware.NewValidationMiddleware(logger).Middleware(chain)
	chain = middleware.NewRateLimiter(convo.Client(), logger).Middleware(chain)
	chain = middleware.NewTracingMiddleware(logger).Middleware(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		logger.Info("routing server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("routing server failed", zap.Error(err))
		}
	}()
	go func() {
		logger.Info("metrics server listening", zap.Int("port", cfg.Server.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
