package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/lectern/lectern/internal/profile"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by its database driver name and a
// driver-specific data source name, usually consisting of at least a
// database name and connection information.
func NewDB(profile *profile.Profile) (*DB, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// Connect to the database with some sane settings:
	//   - No shared-cache: it's obsolete; WAL journal mode is a better solution.
	//   - No foreign key constraints: it's currently disabled by default, but it's a
	//     good practice to be explicit and prevent future surprises on it, as it's
	//     still the default for the driver.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// The sqlite driver implicitly serializes writes; a single open
	// connection avoids SQLITE_BUSY under concurrent turns.
	db.SetMaxOpenConns(1)

	driver := DB{db: db, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'chat_session'`,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check initialization")
	}
	return exists, nil
}
