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
	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/config"
	dbRedis "github.com/raseed-cloud/raseed/internal/db/redis"
	logpkg "github.com/raseed-cloud/raseed/internal/logger"
	"github.com/raseed-cloud/raseed/internal/metrics"
	passrepo "github.com/raseed-cloud/raseed/internal/repository/pass"
	receiptrepo "github.com/raseed-cloud/raseed/internal/repository/receipt"
	"github.com/raseed-cloud/raseed/internal/session"
	chiTransport "github.com/raseed-cloud/raseed/internal/transport/chi"
	geminiLLM "github.com/raseed-cloud/raseed/internal/transport/gemini"
	openaiLLM "github.com/raseed-cloud/raseed/internal/transport/openai"
	batchuc "github.com/raseed-cloud/raseed/internal/usecase/batch"
	"github.com/raseed-cloud/raseed/internal/usecase/embedding"
	healthuc "github.com/raseed-cloud/raseed/internal/usecase/health"
	queryuc "github.com/raseed-cloud/raseed/internal/usecase/query"
	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
	walletuc "github.com/raseed-cloud/raseed/internal/usecase/wallet"
	"github.com/raseed-cloud/raseed/internal/version"
)

// llmProvider is what a text generation backend must offer: the pipeline
// needs Generate, the health service needs HealthCheck.
type llmProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting raseed API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterQueryMetrics()

	// Create repositories (domain-native, no adapters)
	receiptRepo := receiptrepo.New(store, cfg.Storage.KeyPrefix)
	passRepo := passrepo.New(store, cfg.Storage.KeyPrefix)
	if err := receiptRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create receipt index", zap.Error(err))
	}
	if err := passRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create pass index", zap.Error(err))
	}

	// Text generation provider — composition root
	provider := buildProvider(ctx, cfg.LLM, logger)
	generator := queryuc.NewInstrumentedGenerator(provider, cfg.LLM.Provider, cfg.LLM.Model, logger)
	logger.Info("LLM provider created",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)

	// Create use case services
	walletSvc := walletuc.New(passRepo, cfg.Wallet.IssuerID, cfg.Wallet.ClassSuffix)
	receiptSvc := receiptuc.New(receiptRepo, embedding.NewHashEmbedder(), walletSvc).
		WithPagination(cfg.Query.DefaultPageSize, cfg.Query.MaxPageSize)
	batchSvc := batchuc.New(receiptSvc)
	querySvc := queryuc.New(generator, receiptRepo).
		WithExecLimit(cfg.Query.ExecLimit).
		WithMaxResultReceipts(cfg.Query.MaxResultReceipts)

	// Health service
	healthSvc := healthuc.New(store, provider)

	// Create chi server
	registry := session.NewRegistry()
	server := chiTransport.NewServer(receiptSvc, batchSvc, querySvc, walletSvc, healthSvc, registry, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

// buildProvider creates the configured generation backend.
func buildProvider(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) llmProvider {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewGenerator(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		})
	case "gemini":
		gen, err := geminiLLM.NewGenerator(ctx, &geminiLLM.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("Failed to create Gemini provider", zap.Error(err))
		}
		return gen
	default:
		// config.Validate already rejects unknown providers
		logger.Fatal("Unknown LLM provider", zap.String("provider", cfg.Provider))
		return nil
	}
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
