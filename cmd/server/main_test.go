package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/go-stages/internal/db"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "seed", "notifications"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("missing subcommand %s: %v", name, err)
		}
	}
	if c, _, err := root.Find([]string{"notifications", "watch"}); err != nil || c.Name() != "watch" {
		t.Fatalf("missing notifications watch: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	l := newLogger("debug", false)
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level not applied")
	}
	if newLogger("bogus", true).Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("unknown level should default to info")
	}
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "DB_DRIVER=sqlite\nSQLITE_PATH=" + filepath.Join(dir, "stages.db") + "\nDB_CONNECT_RETRIES=1\nLOG_LEVEL=error\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"DB_DRIVER", "SQLITE_PATH", "DB_CONNECT_RETRIES", "LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--env-file", envFile, "seed"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"STUDENT", "EMPLOYER", "PROFESSOR", "MANAGER", "etudiant@example.com"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output misses %q:\n%s", want, out.String())
		}
	}
}

func TestCloseDB(t *testing.T) {
	var logs bytes.Buffer
	e := &env{log: slog.New(slog.NewTextHandler(&logs, nil))}
	gdb, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	e.closeDB(gdb)
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Fatal("closeDB left the pool open")
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected warning: %s", logs.String())
	}
}
