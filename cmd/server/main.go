package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/bookkeeper/internal/adapter/http"
	"github.com/iho/bookkeeper/internal/adapter/http/handler"
	postgresRepo "github.com/iho/bookkeeper/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bookkeeper/internal/adapter/repository/redis"
	"github.com/iho/bookkeeper/internal/infrastructure/config"
	"github.com/iho/bookkeeper/internal/infrastructure/logger"
	"github.com/iho/bookkeeper/internal/infrastructure/postgres"
	"github.com/iho/bookkeeper/internal/infrastructure/redis"
	"github.com/iho/bookkeeper/internal/usecase"
)

func main() {
	// Bootstrap logger until configuration is loaded
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.MigrateUp(cfg.DatabaseURL, cfg.MigrationsPath, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	cache := redisRepo.NewCache(redisClient)
	entityRepo := redisRepo.NewEntityCache(
		postgresRepo.NewEntityRepository(pool),
		cache,
		cfg.EntityCacheTTL,
		log.Logger,
	)
	periodRepo := postgresRepo.NewReportingPeriodRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	taxRepo := postgresRepo.NewTaxRepository(pool)
	lineItemRepo := postgresRepo.NewLineItemRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log.Logger)

	// Initialize use cases
	sessions := usecase.NewSessionFactory(usecase.SessionFactoryConfig{
		TxManager:    txManager,
		Entities:     entityRepo,
		Periods:      periodRepo,
		Accounts:     accountRepo,
		Taxes:        taxRepo,
		LineItems:    lineItemRepo,
		Transactions: transactionRepo,
		IDGen:        idGen,
		Logger:       log.Logger,
	})
	bookkeepingUC := usecase.NewBookkeepingUseCase(
		sessions, entityRepo, accountRepo, taxRepo, transactionRepo, idGen, log.Logger,
	)
	postingUC := usecase.NewPostingUseCase(
		txManager, accountRepo, transactionRepo, taxRepo, ledgerRepo, idGen, retrier, log.Logger,
	)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	// Initialize handlers
	entityHandler := handler.NewEntityHandler(bookkeepingUC)
	accountHandler := handler.NewAccountHandler(bookkeepingUC)
	taxHandler := handler.NewTaxHandler(bookkeepingUC)
	transactionHandler := handler.NewTransactionHandler(bookkeepingUC, postingUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC, bookkeepingUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntityHandler:      entityHandler,
		AccountHandler:     accountHandler,
		TaxHandler:         taxHandler,
		TransactionHandler: transactionHandler,
		LedgerHandler:      ledgerHandler,
		HealthHandler:      healthHandler,
		Logger:             log.Logger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
