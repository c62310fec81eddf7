package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

const fileSourcePrefix = "file://"

// RunMigrations applies the listing schema found under migrationsPath, a directory
// such as ./migrations/postgres with or without a file:// prefix
func RunMigrations(logger *slog.Logger, databaseURL string, migrationsPath string) error {
	if migrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if databaseURL == "" {
		return errors.New("database URL cannot be empty")
	}

	dir := strings.TrimPrefix(migrationsPath, fileSourcePrefix)
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("migrations directory %s: %w", dir, err)
	} else if !info.IsDir() {
		return fmt.Errorf("migrations path %s is not a directory", dir)
	}

	m, err := migrate.New(fileSourcePrefix+dir, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance for %s: %w", dir, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		return fmt.Errorf("failed to apply migrations from %s: %w", dir, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Warn("Failed to read schema version", "path", dir, "error", err)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	logger.Info("Applied PostgreSQL migrations", "path", dir, "version", version, "dirty", dirty)
	return nil
}
