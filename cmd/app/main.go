package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/config"
	"github.com/BuzzLyutic/kanban-board/internal/handler"
	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/internal/storage"
	"github.com/BuzzLyutic/kanban-board/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Подключаем логгер
	logger := newLogger(cfg)
	defer logger.Sync()

	// Подключаем БД и применяем миграции
	stores, err := storage.Open(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to open the Database", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
	}
	defer stores.Close() // Запланированное закрытие соединения
	logger.Info("Successfully connected to the Database!", zap.String("driver", stores.Driver))

	columnHandler := handler.NewColumnHandler(service.NewColumnService(stores.Columns, stores.Keys), logger)
	taskHandler := handler.NewTaskHandler(service.NewTaskService(stores.Tasks, stores.Keys), logger)
	router := handler.NewRouter(columnHandler, taskHandler, stores.Ping, cfg.AllowedOrigins)

	// Фоновое обслуживание: чистка ключей идемпотентности и позиций
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	pool := worker.NewPool(logger, cfg.WorkerCount, cfg.MaintenanceInterval,
		worker.MaintenanceJobs(stores.Columns, stores.Tasks, stores.Keys, cfg.IdempotencyTTL)...)
	pool.Start(workerCtx)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	stopWorkers()
	pool.Stop()
	logger.Info("Server stopped successfully!")
}

func newLogger(cfg config.Config) *zap.Logger {
	build := zap.NewProduction
	if cfg.Development() {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		panic(err)
	}
	return logger
}
