package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"smartjournal/internal/config"
	"smartjournal/internal/db"
	"smartjournal/internal/handlers"
	"smartjournal/internal/logging"
	"smartjournal/internal/services"
	"smartjournal/internal/store/sqlstore"
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
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx := context.Background()
	dbConn, err := db.Open(ctx, db.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open db", zap.Error(err))
		return err
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn); err != nil {
		logger.Error("failed migrations", zap.Error(err))
		return err
	}

	storeOpts := []sqlstore.Option{sqlstore.WithLogger(logger)}
	if cfg.EncryptionKey != "" {
		enc, err := services.NewEncryptionService(cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encryption key: %w", err)
		}
		storeOpts = append(storeOpts, sqlstore.WithSealer(enc))
	} else {
		logger.Warn("ENCRYPTION_KEY not set; journal content is stored in plaintext")
	}
	st := sqlstore.New(dbConn, storeOpts...)

	journal := services.NewJournalService(st, services.JournalConfig{
		StoreTimeout: cfg.StoreTimeout,
		StreakRule:   cfg.Streak(),
		Location:     loc,
	}, logger)
	defer journal.Close()

	if err := journal.Achievements().SyncCatalog(ctx); err != nil {
		logger.Error("failed to sync achievement catalog", zap.Error(err))
		return err
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		DB:        dbConn,
		Store:     st,
		Journal:   journal,
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.JWTTTL,
		Logger:    logger,
	})

	addr := ":" + strconv.Itoa(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("db_driver", cfg.DBDriver),
			zap.String("streak_rule", string(cfg.Streak())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
		return err
	case <-quit:
	}

	logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}
