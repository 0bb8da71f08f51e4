package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "SQLITE_PATH", "NOTIFICATIONS_REFRESH", "MIGRATIONS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN() != "stages.db" {
		t.Fatalf("expected sqlite default, got %s %s", cfg.Database.Driver, cfg.Database.DSN())
	}
	if cfg.Notifications.RefreshInterval != 60*time.Second {
		t.Fatalf("expected 60s refresh, got %s", cfg.Notifications.RefreshInterval)
	}
	if cfg.App.Migrations {
		t.Fatalf("migrations should be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	for _, k := range []string{"DATABASE_DSN", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"} {
		t.Setenv(k, "")
	}
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("NOTIFICATIONS_REFRESH", "15")
	t.Setenv("RATE_LIMIT_WINDOW", "2m")
	t.Setenv("MIGRATIONS", "yes")

	cfg := Load()
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("driver should be lowercased, got %s", cfg.Database.Driver)
	}
	want := "host=db port=6543 user=stages password=stages123 dbname=stages sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Fatalf("DSN: expected %q got %q", want, got)
	}
	if got := cfg.Database.URL(); got != "postgres://stages:stages123@db:6543/stages?sslmode=disable" {
		t.Fatalf("URL: got %q", got)
	}
	if cfg.Notifications.RefreshInterval != 15*time.Second {
		t.Fatalf("bare seconds: got %s", cfg.Notifications.RefreshInterval)
	}
	if cfg.RateLimit.Window != 2*time.Minute {
		t.Fatalf("duration: got %s", cfg.RateLimit.Window)
	}
	if !cfg.App.Migrations {
		t.Fatalf("MIGRATIONS=yes should enable migrations")
	}
}

func TestRawDSNWins(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", RawDSN: "postgres://u:p@h:5432/x?sslmode=require", Host: "ignored"}
	if d.DSN() != d.RawDSN || d.URL() != d.RawDSN {
		t.Fatalf("raw DSN should be used as-is: %s / %s", d.DSN(), d.URL())
	}
}
