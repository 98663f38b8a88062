package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/rankforge/rankforge/internal/config"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
)

// Migrate applies all pending schema migrations from cfg.MigrationPath.
// A schema already at the latest version is not an error.
func Migrate(cfg config.DatabaseConfig) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", cfg.MigrationPath), DSN(cfg))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "open migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "apply migrations")
	}
	return nil
}
