// FilePath: internal/database/database.go

// Package database owns the two Postgres-protocol connections of the hub:
// the registry database that holds silos, sensors and assessment
// snapshots, and the TimescaleDB measurement store that holds the
// readings hypertable. Both speak lib/pq; only the measurement store
// requires the timescaledb extension.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

// DB is the common surface of the registry and measurement connections.
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	GetDB() *sqlx.DB
}

// PostgresDB is the registry database connection.
type PostgresDB struct {
	db *sqlx.DB
}

// TimescaleDB is the measurement store connection.
type TimescaleDB struct {
	db *sqlx.DB
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repository represents common repository operations
type Repository interface {
	BeginTx(ctx context.Context) (Transaction, error)
}

func dsn(cfg config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}

// NewPostgresDB connects to the registry database.
func NewPostgresDB(cfg config.PostgresConfig) (DB, error) {
	db, err := sqlx.Connect("postgres", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("error connecting to registry database: %w", err)
	}

	nuts.L.Infof("[PostgresDB] Registry connected at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &PostgresDB{db: db}, nil
}

// NewTimescaleDB connects to the measurement store and verifies that the
// timescaledb extension is installed, since the readings hypertable
// cannot exist without it.
func NewTimescaleDB(cfg config.PostgresConfig) (DB, error) {
	db, err := sqlx.Connect("postgres", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("error connecting to measurement store: %w", err)
	}

	var hasTimescaleDB bool
	if err := db.Get(&hasTimescaleDB, "SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'timescaledb')"); err != nil {
		return nil, fmt.Errorf("error probing for timescaledb extension: %w", err)
	}
	if !hasTimescaleDB {
		return nil, fmt.Errorf("timescaledb extension not installed in %s", cfg.DBName)
	}

	nuts.L.Infof("[TimescaleDB] Measurement store connected at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &TimescaleDB{db: db}, nil
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresDB) GetDB() *sqlx.DB {
	return p.db
}

func (t *TimescaleDB) Close() error {
	return t.db.Close()
}

func (t *TimescaleDB) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

func (t *TimescaleDB) GetDB() *sqlx.DB {
	return t.db
}
