package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/config"
	"github.com/HansujaB/rag-insights-engine/internal/db"
	dbRedis "github.com/HansujaB/rag-insights-engine/internal/db/redis"
	"github.com/HansujaB/rag-insights-engine/internal/index"
	logpkg "github.com/HansujaB/rag-insights-engine/internal/logger"
	"github.com/HansujaB/rag-insights-engine/internal/metrics"
	"github.com/HansujaB/rag-insights-engine/internal/repository/docstore"
	"github.com/HansujaB/rag-insights-engine/internal/repository/embcache"
	"github.com/HansujaB/rag-insights-engine/internal/transport/httpapi"
	openaiTransport "github.com/HansujaB/rag-insights-engine/internal/transport/openai"
	"github.com/HansujaB/rag-insights-engine/internal/usecase/document"
	evaluationuc "github.com/HansujaB/rag-insights-engine/internal/usecase/evaluation"
	experimentuc "github.com/HansujaB/rag-insights-engine/internal/usecase/experiment"
	generationuc "github.com/HansujaB/rag-insights-engine/internal/usecase/generation"
	healthuc "github.com/HansujaB/rag-insights-engine/internal/usecase/health"
	raguc "github.com/HansujaB/rag-insights-engine/internal/usecase/rag"
	"github.com/HansujaB/rag-insights-engine/internal/version"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rag-insights-engine API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("embedding_cache", cfg.Cache.Enabled),
	)

	metrics.Register()

	// Optional Redis-backed embedding cache.
	var store db.Store
	if cfg.Cache.Enabled {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer redisStore.Close()

		if err := redisStore.WaitForReady(context.Background(), 10*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		store = redisStore
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder raguc.Embedder = baseEmbedder
	if store != nil {
		embedder = embcache.New(
			baseEmbedder, store,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	generationCompleter := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Kind:    "generation",
		Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	evaluationCompleter := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Kind:    "evaluation",
		Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	idx := index.New()
	docs := docstore.New()

	generationSvc := generationuc.New(generationCompleter, cfg.LLM.Model, logger).
		WithMaxContextChars(cfg.Pipeline.MaxContextChars)
	evaluationSvc := evaluationuc.New(evaluationCompleter, cfg.LLM.EvaluatorModel, logger)
	documentSvc := document.New(docs, cfg.Storage.UploadDir, logger)
	ragSvc := raguc.New(docs, idx, embedder, generationSvc, evaluationSvc, logger)
	experimentSvc := experimentuc.New(ragSvc, cfg.Experiment.Concurrency, logger)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(generationCompleter, baseEmbedder, cachePinger)

	server := httpapi.NewServer(
		ragSvc, experimentSvc, evaluationSvc, generationSvc,
		documentSvc, healthSvc, idx,
		httpapi.Defaults{
			ChunkSize:      cfg.Pipeline.ChunkSize,
			OverlapPercent: cfg.Pipeline.OverlapPercent,
			TopK:           cfg.Pipeline.TopK,
			Model:          cfg.LLM.Model,
			Temperature:    cfg.Pipeline.Temperature,
			ChunkSizes:     cfg.Experiment.ChunkSizes,
			EvaluateLegs:   cfg.Experiment.EvaluateLegs,
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
