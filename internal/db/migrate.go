package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-stages/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// activeConvocationIndex keeps at most one non-cancelled convocation per candidature.
const activeConvocationIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_convocations_active
	ON convocations (candidature_id) WHERE statut <> 'ANNULEE'`

// Migrate creates or updates every table through AutoMigrate, then the
// indexes gorm tags cannot express.
func Migrate(gdb *gorm.DB) error {
	for _, m := range models.All() {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	if err := gdb.Exec(activeConvocationIndex).Error; err != nil {
		return fmt.Errorf("create active convocation index: %w", err)
	}
	for _, table := range []string{"ententes", "evaluations", "convocations", "profiles"} {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// MigrateSQL applies the embedded SQL migrations to a postgres database.
// databaseURL must be in URL form (see ToURLDSN).
func MigrateSQL(databaseURL string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
