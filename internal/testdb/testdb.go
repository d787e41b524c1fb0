// Package testdb поднимает базы данных для тестов: PostgreSQL в контейнере
// и SQLite в памяти.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/storage"
)

// SetupPostgres запускает контейнер PostgreSQL и возвращает строку подключения.
// Без Docker тест пропускается.
func SetupPostgres(t *testing.T) (string, func()) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("kanban"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

// TruncateTables очищает все таблицы доски
func TruncateTables(t *testing.T, connStr string) {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, "TRUNCATE columns, tasks, idempotency_keys RESTART IDENTITY")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SQLite открывает чистую базу в памяти с применёнными миграциями.
func SQLite(t *testing.T) *storage.Stores {
	t.Helper()

	stores, err := storage.Open(context.Background(), "sqlite://:memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(stores.Close)
	return stores
}

// Postgres открывает хранилище поверх нового контейнера.
func Postgres(t *testing.T) *storage.Stores {
	t.Helper()

	connStr, cleanup := SetupPostgres(t)
	t.Cleanup(cleanup)

	stores, err := storage.Open(context.Background(), connStr, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open postgres: %v", err)
	}
	t.Cleanup(stores.Close)
	return stores
}
