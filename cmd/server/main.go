package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank/ledger-service/internal/config"
	"github.com/corebank/ledger-service/internal/db"
	"github.com/corebank/ledger-service/internal/domain"
	"github.com/corebank/ledger-service/internal/events"
	"github.com/corebank/ledger-service/internal/server"
	"github.com/corebank/ledger-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()
	log.Info().Msg("database connection pool initialized")

	accountRepo := db.NewAccountRepository(pool.Pool)
	transactionRepo := db.NewTransactionRepository(pool.Pool)
	userRepo := db.NewUserRepository(pool.Pool)
	txManager := db.NewTransactionManager(pool.Pool, cfg.LockTimeout)

	var publisher domain.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		defer rabbit.Close()
		publisher = rabbit
		log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("event publisher initialized")
	}

	ledger := domain.NewLedgerService(accountRepo, transactionRepo, userRepo, txManager, publisher, log)
	queries := domain.NewQueryService(accountRepo, transactionRepo)
	accounts := domain.NewAccountService(accountRepo, userRepo)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(ledger, queries, accounts, log).Handler(),
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	log.Info().Msg("http server stopped")
}
