package odr

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the persisted class-record database. Open dispatches on
// the DSN shape the same way the teacher's db.Connect does: a local
// file path opens a plain sqlite file, an http(s)/libsql URL opens a
// remote Turso/libSQL connection, letting a CI fleet share one
// cross-TU corpus database instead of each analyze run owning its own
// file.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the class_records schema.
func Open(dsn string, debug bool) (*Store, error) {
	if !isRemoteDSN(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("odr: creating database directory: %w", err)
			}
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isRemoteDSN(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if token := os.Getenv("CPPSCAN_LIBSQL_AUTH_TOKEN"); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("odr: creating libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn})
	} else {
		dialector = sqlite.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("odr: connecting: %w", err)
	}

	if sqlDB, dbErr := gdb.DB(); dbErr == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}

	if err := gdb.AutoMigrate(&ClassRecord{}); err != nil {
		return nil, fmt.Errorf("odr: migrating: %w", err)
	}

	return &Store{db: gdb}, nil
}

// OpenGorm wraps an already-open *gorm.DB (e.g. an in-memory sqlite
// handle set up by a caller's test) without going through DSN
// dispatch, migrating the schema if necessary.
func OpenGorm(gdb *gorm.DB) (*Store, error) {
	if err := gdb.AutoMigrate(&ClassRecord{}); err != nil {
		return nil, fmt.Errorf("odr: migrating: %w", err)
	}
	return &Store{db: gdb}, nil
}

func isRemoteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql")
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
