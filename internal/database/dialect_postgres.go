package database

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresDialect talks to PostgreSQL through lib/pq
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN pins the session time zone to UTC unless the connection string sets one.
// Both URL and key=value forms are accepted.
func (d *PostgresDialect) DSN(config DialectConfig) string {
	dsn := strings.TrimSpace(config.URL)
	if dsn == "" || strings.Contains(strings.ToLower(dsn), "timezone=") {
		return dsn
	}
	if !strings.Contains(dsn, "://") {
		return dsn + " timezone=UTC"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&timezone=UTC"
	}
	return dsn + "?timezone=UTC"
}

func (d *PostgresDialect) BindType() int {
	return sqlx.DOLLAR
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return rebind(d.BindType(), query)
}

// SupportsLastInsertId is false; inserts go through RETURNING id
func (d *PostgresDialect) SupportsLastInsertId() bool {
	return false
}

func (d *PostgresDialect) ConfigureConnection(db *sqlx.DB, config DialectConfig) error {
	db.SetMaxOpenConns(poolSize(config.MaxOpenConns, 25))
	db.SetMaxIdleConns(poolSize(config.MaxIdleConns, 5))
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *PostgresDialect) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
