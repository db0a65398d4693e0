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

	"github.com/openlistings/searchd/internal/config"
	dbRedis "github.com/openlistings/searchd/internal/db/redis"
	logpkg "github.com/openlistings/searchd/internal/logger"
	"github.com/openlistings/searchd/internal/metrics"
	"github.com/openlistings/searchd/internal/parser"
	categoryrepo "github.com/openlistings/searchd/internal/repository/category"
	listingrepo "github.com/openlistings/searchd/internal/repository/listing"
	chiTransport "github.com/openlistings/searchd/internal/transport/chi"
	openaiParser "github.com/openlistings/searchd/internal/transport/openai"
	cataloguc "github.com/openlistings/searchd/internal/usecase/catalog"
	healthuc "github.com/openlistings/searchd/internal/usecase/health"
	searchuc "github.com/openlistings/searchd/internal/usecase/search"
	"github.com/openlistings/searchd/internal/version"
)

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

	logger.Info("Starting searchd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("parser_strategy", cfg.Parser.Strategy),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
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

	// Register parser metrics explicitly (no init())
	metrics.RegisterParserMetrics()

	// Create repositories
	catRepo := categoryrepo.New(store, cfg.Storage.KeyPrefix)
	listRepo := listingrepo.New(store, cfg.Storage.KeyPrefix)

	// The cross-category index must exist before the first search
	if err := listRepo.EnsureCatalogIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure catalog index", zap.Error(err))
	}

	// Select the query-understanding strategy in the composition root
	var (
		queryParser   searchuc.QueryParser
		parserChecker healthuc.ParserChecker
	)
	switch cfg.Parser.Strategy {
	case "openai":
		p := openaiParser.NewParser(&openaiParser.Config{
			APIKey:      cfg.Parser.OpenAI.APIKey,
			BaseURL:     cfg.Parser.OpenAI.BaseURL,
			Model:       cfg.Parser.OpenAI.Model,
			Temperature: cfg.Parser.OpenAI.Temperature,
			Timeout:     time.Duration(cfg.Parser.OpenAI.TimeoutSec) * time.Second,
			Provider:    "openai",
			Logger:      logger,
		})
		queryParser = p
		parserChecker = p
		logger.Info("Query parser created",
			zap.String("provider", "openai"),
			zap.String("model", cfg.Parser.OpenAI.Model),
		)
	default:
		queryParser = parser.NewHeuristic()
		logger.Info("Query parser created", zap.String("provider", "heuristic"))
	}

	// Create use case services
	searchSvc := searchuc.New(listRepo, catRepo, queryParser, searchuc.Config{
		FacetValueLimit: cfg.Search.FacetValueLimit,
	})
	catalogSvc := cataloguc.New(catRepo, listRepo, cataloguc.Config{
		MaxBatchSize: cfg.Search.MaxBatchSize,
	})
	healthSvc := healthuc.New(store, parserChecker)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, catalogSvc, healthSvc, chiTransport.Config{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, logger)

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

			// Canonical log line, one line per request
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
