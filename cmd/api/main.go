package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jobboard-api/internal/config"
	"github.com/jobboard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/jobboard-api/internal/infrastructure/jwt"
	redisinfra "github.com/jobboard-api/internal/infrastructure/redis"
	"github.com/jobboard-api/internal/infrastructure/smtp"
	"github.com/jobboard-api/internal/infrastructure/sns"
	transporthttp "github.com/jobboard-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secret, err := sessionSecret(cfg)
	if err != nil {
		return err
	}
	signer, err := jwtinfra.NewProvider(secret)
	if err != nil {
		return fmt.Errorf("session signer: %w", err)
	}

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	useRedis := cfg.SessionBackend == config.SessionBackendRedis
	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, !useRedis)

	deps := &transporthttp.Deps{
		UserRepo: dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		Mailer:   smtp.NewMailer(cfg),
		Signer:   signer,
	}

	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb := redisinfra.NewClient(cfg)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		deps.SessionRepo = redisinfra.NewSessionStore(rdb)
	case config.SessionBackendDynamo:
		deps.SessionRepo = dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions)
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	// SNS SMS mirror (optional, graceful fallback).
	if cfg.SMSMirrorEnabled {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			deps.SMSSender = sender
		} else {
			slog.Warn("SNS sender not available", "err", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "sessions", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// sessionSecret returns SESSION_SECRET. Outside production a random secret is
// generated when none is set, which invalidates cookies on every restart.
func sessionSecret(cfg *config.Config) ([]byte, error) {
	if s := strings.TrimSpace(cfg.SessionSecret); s != "" {
		return []byte(s), nil
	}
	if cfg.IsProduction() {
		return nil, errors.New("SESSION_SECRET is required in production")
	}
	slog.Warn("SESSION_SECRET not set, using an ephemeral secret")
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
