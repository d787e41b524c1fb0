// Package storage opens the board database selected by DATABASE_URL, applies
// the embedded migrations and exposes the repositories for it.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/repo"
	"github.com/BuzzLyutic/kanban-board/internal/repo/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Stores bundles the repositories of one database.
type Stores struct {
	Driver  string
	Columns repo.ColumnRepository
	Tasks   repo.TaskRepository
	Keys    repo.IdempotencyRepository

	ping  func(ctx context.Context) error
	close func()
}

// Open connects to databaseURL, which is either a postgres:// URL or
// sqlite://<path> (sqlite://:memory: for a throwaway database).
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*Stores, error) {
	switch driver, dsn := parseURL(databaseURL); driver {
	case DriverPostgres:
		return openPostgres(ctx, dsn, logger)
	case DriverSQLite:
		return openSQLite(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("unsupported database url %q", databaseURL)
	}
}

func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Stores) Close() {
	s.close()
}

func parseURL(databaseURL string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(databaseURL, "sqlite://")
	}
	return "", ""
}

func openPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Stores, error) {
	if err := migratePostgres(dsn); err != nil {
		return nil, err
	}
	logger.Info("Migrations applied", zap.String("driver", DriverPostgres))

	pool, err := pgxpool.New(ctx, dsn) // Создаем новое соединение к БД
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil { // Пытаемся пингануть БД
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Stores{
		Driver:  DriverPostgres,
		Columns: repo.NewColumnRepo(pool),
		Tasks:   repo.NewTaskRepo(pool),
		Keys:    repo.NewIdempotencyRepo(pool),
		ping:    pool.Ping,
		close:   pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, path string, logger *zap.Logger) (*Stores, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Migrations applied", zap.String("driver", DriverSQLite), zap.String("path", path))

	return &Stores{
		Driver:  DriverSQLite,
		Columns: sqlite.NewColumnRepo(db),
		Tasks:   sqlite.NewTaskRepo(db),
		Keys:    sqlite.NewIdempotencyRepo(db),
		ping:    db.PingContext,
		close:   func() { db.Close() },
	}, nil
}

func migratePostgres(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	// The pgx/v5 migrate driver is registered under the pgx5 scheme.
	target := "pgx5://" + dsn[strings.Index(dsn, "://")+3:]
	m, err := migrate.NewWithSourceInstance("iofs", src, target)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// migrateSQLite runs the migrations on db itself. The migrate instance is not
// closed since that would close db.
func migrateSQLite(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
