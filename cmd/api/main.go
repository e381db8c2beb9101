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

	"go.uber.org/zap"

	"github.com/bimakw/amm-calculator/internal/config"
	"github.com/bimakw/amm-calculator/internal/domain/services"
	"github.com/bimakw/amm-calculator/internal/infrastructure/cache"
	"github.com/bimakw/amm-calculator/internal/logging"
	"github.com/bimakw/amm-calculator/internal/presentation/handlers"
)

const (
	version = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Initialize cache
	var cacheClient cache.Cache
	cacheKind := "memory"
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("failed to connect to redis, using in-memory cache", zap.Error(err))
			cacheClient = cache.NewInMemoryCache()
		} else {
			defer redisCache.Close()
			cacheClient = redisCache
			cacheKind = "redis"
			logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		cacheClient = cache.NewInMemoryCache()
		logger.Info("using in-memory cache")
	}

	// Initialize services
	calculator, err := services.NewCalculator(
		services.WithPrecision(cfg.Precision),
		services.WithFee(cfg.SwapFee),
		services.WithLogger(logger.Named("calculator")),
	)
	if err != nil {
		return fmt.Errorf("create calculator: %w", err)
	}
	quoteService := services.NewQuoteService(calculator, cacheClient, cfg.CacheTTL, logger.Named("quotes"))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(version, calculator.Precision(), calculator.Fee().String(), cacheKind)
	liquidityHandler := handlers.NewLiquidityHandler(quoteService, logger)
	quoteHandler := handlers.NewQuoteHandler(quoteService, logger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handlers.NewRouter(healthHandler, liquidityHandler, quoteHandler, logger.Named("http")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting AMM calculator API",
			zap.String("version", version),
			zap.String("addr", server.Addr),
			zap.Int("precision", cfg.Precision))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
