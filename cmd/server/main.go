// Package main initializes and starts the GophTweeter web server,
// setting up configuration, logging, the database, the session store,
// services, handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTweeter/internal/certgen"
	"github.com/atinyakov/GophTweeter/internal/config"
	"github.com/atinyakov/GophTweeter/internal/db"
	"github.com/atinyakov/GophTweeter/internal/logger"
	"github.com/atinyakov/GophTweeter/internal/password"
	"github.com/atinyakov/GophTweeter/internal/repository"
	"github.com/atinyakov/GophTweeter/internal/server/handler/http"
	"github.com/atinyakov/GophTweeter/internal/service"
	"github.com/atinyakov/GophTweeter/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	sweepInterval   = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	if options.UsesDevSecret() {
		zapLogger.Warn("using the built-in development secret key; set SECRET_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and apply migrations.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = postgresDB.Close() }()

	store, closeStore, err := newSessionStore(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init session store", zap.Error(err))
	}
	defer closeStore()

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	tweetRepo := repository.NewPostgresTweetRepository(postgresDB)

	// Initialize business-logic services.
	userService, err := service.NewUserService(userRepo, password.New(options.BcryptCost))
	if err != nil {
		zapLogger.Fatal("cannot init user service", zap.Error(err))
	}
	tweetService := service.NewTweetService(tweetRepo)

	// Create HTTP handlers.
	views, err := http.NewRenderer(zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot parse templates", zap.Error(err))
	}
	pageHandler := &http.PageHandler{Views: views, DB: postgresDB, Log: zapLogger}
	authHandler := &http.AuthHandler{
		Users:         userService,
		Sessions:      store,
		Views:         views,
		Log:           zapLogger,
		SessionTTL:    options.SessionTTL.Duration,
		SecureCookies: options.SecureCookies,
	}
	tweetHandler := &http.TweetHandler{
		Tweets: tweetService,
		Users:  userService,
		Views:  views,
		Log:    zapLogger,
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(pageHandler, authHandler, tweetHandler, store, options.AllowedOrigins, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Load the server key pair when HTTPS is configured.
	if options.TLSEnabled() {
		tlsConfig, err := certgen.ServerTLSConfig(options.TLSCert, options.TLSKey)
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
		server.TLSConfig = tlsConfig
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Port),
			zap.Bool("tls", options.TLSEnabled()),
			zap.String("session_backend", options.SessionBackend),
		)
		if options.TLSEnabled() {
			errCh <- server.ListenAndServeTLS("", "")
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// newSessionStore builds the configured session backend. The returned
// function releases its resources.
func newSessionStore(ctx context.Context, options *config.Options, log *zap.Logger) (session.Store, func(), error) {
	ttl := options.SessionTTL.Duration

	switch options.SessionBackend {
	case config.SessionRedis:
		client, err := session.NewRedisClient(ctx, options.RedisAddr, options.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client, ttl), func() { _ = client.Close() }, nil

	case config.SessionCookie:
		store, err := session.NewCookieStore(options.SecretKey, ttl)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	default:
		store := session.NewMemoryStore(ttl)
		session.StartSweeper(ctx, store, sweepInterval, log)
		return store, func() {}, nil
	}
}
