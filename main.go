package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-backoffice/config"
	"property-backoffice/internal/api"
	"property-backoffice/internal/auth"
	"property-backoffice/internal/cache"
	"property-backoffice/internal/database"
	"property-backoffice/internal/events"
	"property-backoffice/internal/leases"
	"property-backoffice/internal/vault"

	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logger := newLogger(cfg.LoggingConfig)
	logger.Info().Msg("Structured logging initialized")

	ctx := context.Background()

	// Load secrets from Vault when enabled; config/env values are used
	// as-is otherwise.
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Vault client")
	}
	if vaultClient.IsEnabled() {
		secrets, err := vaultClient.LoadSecrets(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load secrets from Vault")
		}
		if secrets.DatabasePassword != "" {
			cfg.DatabaseConfig.Password = secrets.DatabasePassword
		}
		if secrets.JWTSecret != "" {
			cfg.AuthConfig.JWTSecret = secrets.JWTSecret
		}
		if secrets.AdminEmail != "" {
			cfg.AuthConfig.AdminEmail = secrets.AdminEmail
		}
		if secrets.AdminPassword != "" {
			cfg.AuthConfig.AdminPassword = secrets.AdminPassword
		}
		logger.Info().Msg("Secrets loaded from Vault")
	}

	// Initialize database
	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Seed the admin account when credentials are configured
	if cfg.AuthConfig.AdminEmail != "" && cfg.AuthConfig.AdminPassword != "" {
		if err := auth.SeedAdminUser(ctx, db, cfg.AuthConfig.AdminEmail, cfg.AuthConfig.AdminPassword); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed admin user")
		}
	}

	repo := database.NewRepository(db)

	// Event bus for lease and payment lifecycle events
	eventBus := events.NewEventBus()
	logger.Info().Msg("Event bus initialized")

	// Redis cache for payment summaries (optional, degrades gracefully)
	var cacheService *cache.CacheService
	var summaryCache *cache.SummaryCacheService
	var serviceCache leases.SummaryCache
	if cfg.RedisConfig.Enabled {
		cacheService, err = cache.NewCacheService(cfg.RedisConfig)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, running without cache")
		}
		if cacheService != nil {
			summaryCache = cache.NewSummaryCacheService(cacheService, cache.DefaultSummaryTTL, zlogAdapter{logger})
			serviceCache = summaryCache
			defer cacheService.Close()
			logger.Info().Str("addr", cfg.RedisConfig.Address).Msg("Redis cache initialized")
		}
	}

	// Auth service (disabled when no JWT secret is configured)
	var authService *auth.Service
	if cfg.AuthConfig.JWTSecret != "" {
		authService = auth.NewService(repo, auth.Config{
			JWTSecret:            cfg.AuthConfig.JWTSecret,
			AccessTokenDuration:  cfg.AuthConfig.AccessTokenDuration,
			RefreshTokenDuration: cfg.AuthConfig.RefreshTokenDuration,
			MinPasswordLength:    cfg.AuthConfig.MinPasswordLength,
		})
		logger.Info().Msg("Authentication enabled")
	} else {
		logger.Warn().Msg("No JWT secret configured, API authentication is DISABLED")
	}

	// Lease service: scheduling, status classification and payment recording
	leaseService := leases.NewService(repo, serviceCache, eventBus, leases.Config{
		AgencyFeeRate:       cfg.BillingConfig.AgencyFeeRate,
		DueSoonDays:         cfg.BillingConfig.DueSoonDays,
		PenaltyFlatPerMonth: cfg.BillingConfig.PenaltyFlatPerMonth,
		PenaltyCapPercent:   cfg.BillingConfig.PenaltyCapPercent,
	}, logger)

	// Background refresher sweeps active leases for late/due-soon periods,
	// penalties and fixed-term expiry
	refresher := leases.NewRefresher(leaseService, cfg.BillingConfig.RefreshInterval, logger)
	if err := refresher.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start lease refresher")
	}

	// HTTP API server
	server := api.NewServer(api.ServerConfig{
		Port:           cfg.ServerConfig.Port,
		Host:           cfg.ServerConfig.Host,
		AllowedOrigins: cfg.ServerConfig.AllowedOrigins,
		ProductionMode: os.Getenv("GIN_MODE") == "release",
		ReadTimeout:    time.Duration(cfg.ServerConfig.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.ServerConfig.WriteTimeout) * time.Second,
	}, repo, leaseService, refresher, eventBus, authService, vaultClient, cacheService, summaryCache)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Web server failed")
		}
	}()
	logger.Info().Int("port", cfg.ServerConfig.Port).Msg("Web server started")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down...")

	if err := refresher.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Failed to stop refresher")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	logger.Info().Msg("Shutdown complete")
}

// newLogger builds the root zerolog logger from the logging config.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("Failed to open log file %s, falling back to stdout: %v", cfg.Output, err)
			out = os.Stdout
		} else {
			out = f
		}
	}

	if !cfg.JSONFormat {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// zlogAdapter adapts zerolog to the cache layer's logging interface.
type zlogAdapter struct {
	l zerolog.Logger
}

func (a zlogAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (a zlogAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.l.Warn().Fields(keysAndValues).Msg(msg)
}
