package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sqlx.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// BindType is the sqlx placeholder style of the driver
	BindType() int

	// RewriteQuery converts ? placeholders to the driver's bind style
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies pool settings and any session-level options
	ConfigureConnection(db *sqlx.DB, config DialectConfig) error

	// MigrationsSubdir returns the embedded migrations directory for the dialect
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// BoolValue returns the SQL representation of a boolean value
	BoolValue(b bool) string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string

	MaxOpenConns int
	MaxIdleConns int
}

// NewDialect returns the dialect for a configured database type
func NewDialect(dbType string) (Dialect, error) {
	switch strings.ToLower(dbType) {
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", dbType)
}

func rebind(bindType int, query string) string {
	if bindType == sqlx.QUESTION {
		return query
	}
	return sqlx.Rebind(bindType, query)
}

func poolSize(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
