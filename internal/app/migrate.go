package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

// OpenMigrator builds a migrator over the first existing migrations directory.
func OpenMigrator(dir, rawURL string, disablePrepared bool) (*migrate.Migrate, string, error) {
	resolved, err := resolveMigrationsDir(dir)
	if err != nil {
		return nil, "", err
	}

	sourceURL := "file://" + filepath.ToSlash(resolved)
	m, err := migrate.New(sourceURL, normalizeDBURL(rawURL, disablePrepared))
	if err != nil {
		return nil, "", fmt.Errorf("create migrator: %w", err)
	}
	return m, sourceURL, nil
}

// CloseMigrator logs close failures; there is nothing else to do with them.
func CloseMigrator(m *migrate.Migrate, logger *logging.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db", "error", dbErr)
	}
}

func runMigrations(dir, dsn string, logger *logging.Logger) error {
	m, sourceURL, err := OpenMigrator(dir, dsn, false)
	if err != nil {
		return err
	}
	defer CloseMigrator(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("migrations applied", "source", sourceURL)
	return nil
}

func resolveMigrationsDir(preferred string) (string, error) {
	candidates := []string{
		strings.TrimSpace(preferred),
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked DB_MIGRATIONS_DIR, MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}
