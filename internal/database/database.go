package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Config for database connection
type Config struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB is a sqlx handle that remembers the SQL dialect its queries are built
// for.
type DB struct {
	*sqlx.DB
	Dialect string
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*DB, error) {
	d, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Str("dialect", d).
		Msg("connected to database")

	return &DB{DB: db, Dialect: d}, nil
}

// EntDriver exposes the connection as an ent driver for schema migration.
// Closing the returned driver closes the underlying pool.
func (db *DB) EntDriver() dialect.Driver {
	return entsql.OpenDB(db.Dialect, db.DB.DB)
}

func dataSource(cfg Config) (string, string, error) {
	switch cfg.Driver {
	case "postgres", "pgx":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
		)
		return dialect.Postgres, dsn, nil
	case "sqlite3":
		if cfg.Path == "" {
			return "", "", fmt.Errorf("sqlite3 driver requires a database path")
		}
		return dialect.SQLite, sqliteDSN(cfg.Path), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN makes transactions take the write lock when they begin, so a
// read-then-write transaction waits on the busy timeout instead of failing
// with "database is locked".
func sqliteDSN(path string) string {
	if strings.Contains(path, "_txlock=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate"
}
