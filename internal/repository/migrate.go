package repository

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLogger adapts zerolog to migrate.Logger
type migrationLogger struct{}

func (migrationLogger) Printf(format string, v ...any) {
	log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrationLogger) Verbose() bool {
	return false
}

// Migrate applies every pending embedded migration
func Migrate(cfg Config) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.URL("pgx5"))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	m.Log = migrationLogger{}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("No new migrations to apply")
		return nil
	}
	if err != nil {
		version, dirty, _ := m.Version()
		return fmt.Errorf("failed to apply migrations (version=%d dirty=%t): %w", version, dirty, err)
	}

	version, _, _ := m.Version()
	log.Info().Uint("version", version).Msg("Successfully applied migrations")
	return nil
}
