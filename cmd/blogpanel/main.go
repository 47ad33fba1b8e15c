// Package main is the entry point for the blog panel server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogpanel/internal/blog"
	"blogpanel/internal/cache"
	"blogpanel/internal/config"
	"blogpanel/internal/database"
	"blogpanel/internal/handlers"
	"blogpanel/internal/media"
	"blogpanel/internal/router"
	"blogpanel/internal/session"
)

// Requests allowed per client and endpoint group in one window.
const (
	rateLimit  = 10
	rateWindow = time.Minute
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if users already exist).
	if cfg.IsDev() {
		err := database.Seed(db, database.SeedAdmin{
			Name:     "Admin",
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session cookies are Secure everywhere but development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	limiter := cache.NewLimiter(valkeyClient, rateLimit, rateWindow)

	// Uploads go to S3-compatible storage when configured, to disk otherwise.
	var (
		backend   media.Backend
		uploadDir string
	)
	if cfg.UseS3() {
		backend, err = media.NewS3Backend(cfg.S3Endpoint, cfg.S3Region,
			cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		backend, err = media.NewDiskBackend(cfg.UploadDir)
		if err != nil {
			slog.Error("failed to initialize upload directory", "error", err)
			os.Exit(1)
		}
		uploadDir = cfg.UploadDir
		slog.Info("disk storage configured", "dir", cfg.UploadDir)
	}

	svc := blog.New(blog.NewSQLRunner(db), media.New(backend))

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Limiter:       limiter,
		Admin:         handlers.NewAdmin(svc),
		Auth:          handlers.NewAuth(svc.Users, sessionStore),
		Public:        handlers.NewPublic(svc),
		UploadDir:     uploadDir,
		SecureCookies: secureCookies,
	})

	// WriteTimeout leaves room for uploads forwarded to object storage.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
