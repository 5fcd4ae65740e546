package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the latest schema file.
// This file is used to initialize fresh installations with the current schema.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema on a fresh installation. The
// schema ships as one LATEST.sql per driver; an already-initialized
// database is left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		return nil
	}

	buf, err := s.latestSchema()
	if err != nil {
		return err
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}

	slog.Info("database schema initialized", slog.String("driver", s.profile.Driver))
	return nil
}

func (s *Store) latestSchema() ([]byte, error) {
	filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	buf, err := fs.ReadFile(migrationFS, filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read latest schema file %q", filePath)
	}
	return buf, nil
}
