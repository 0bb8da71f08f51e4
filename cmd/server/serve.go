package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-stages/auth"
	"github.com/diewo77/go-stages/internal/db"
	"github.com/diewo77/go-stages/internal/metrics"
	"github.com/diewo77/go-stages/internal/middleware"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(e *env) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				e.cfg.Server.Port = port
			}
			return serve(cmd.Context(), e)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default: PORT or 8080)")
	return cmd
}

func serve(ctx context.Context, e *env) error {
	cfg, log := e.cfg, e.log
	gdb, err := e.openDB()
	if err != nil {
		return err
	}
	defer e.closeDB(gdb)
	if cfg.App.Migrations {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("migrations completed")
	}
	if cfg.App.Seed {
		if _, err := db.Seed(gdb); err != nil {
			return err
		}
		log.Info("seed completed")
	} else if _, err := db.SeedProfiles(gdb); err != nil {
		return err
	}

	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		gdb.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	})

	var limiter middleware.Limiter = middleware.NewMemoryLimiter()
	if cfg.RateLimit.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, rate limiting fails open", "error", err)
		}
		limiter = middleware.NewRedisLimiter(rdb)
	}

	app := server.New(server.Options{
		DB:        gdb,
		Gate:      policy.NewAuthGate(gdb, cfg.App.ProfileCacheTTL),
		Logger:    log,
		Metrics:   metrics.New(),
		Limiter:   limiter,
		RateLimit: cfg.RateLimit,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}
