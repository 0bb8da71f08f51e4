// Command server runs the internship agreement API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/diewo77/go-stages/auth"
	"github.com/diewo77/go-stages/internal/config"
	"github.com/diewo77/go-stages/internal/db"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// env is shared by every subcommand once the root pre-run has loaded it.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		e       env
	)
	cmd := &cobra.Command{
		Use:          "stages",
		Short:        "Internship agreement lifecycle API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			e.cfg = config.Load()
			e.log = newLogger(e.cfg.App.LogLevel, e.cfg.App.Dev)
			slog.SetDefault(e.log)
			if e.cfg.Session.Secret != "" {
				auth.SetSecret(e.cfg.Session.Secret)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newServeCmd(&e))
	cmd.AddCommand(newMigrateCmd(&e))
	cmd.AddCommand(newSeedCmd(&e))
	cmd.AddCommand(newNotificationsCmd(&e))
	return cmd
}

// newLogger logs JSON in production and text in development.
func newLogger(level string, dev bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if dev {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func (e *env) openDB() (*gorm.DB, error) {
	return db.Open(e.cfg.Database, e.log)
}

// closeDB is deferred by every command that calls openDB.
func (e *env) closeDB(gdb *gorm.DB) {
	if err := db.Close(gdb); err != nil {
		e.log.Warn("close database", "error", err)
	}
}
