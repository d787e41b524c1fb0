package main

import (
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/client"
	"github.com/BuzzLyutic/kanban-board/internal/config"
	"github.com/BuzzLyutic/kanban-board/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	// Логи пишем в файл, экран занят интерфейсом
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{cfg.LogFile}
	logCfg.ErrorOutputPaths = []string{cfg.LogFile}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logger.Sync()

	api := client.New(cfg.ServerURL, &http.Client{Timeout: cfg.RequestTimeout})
	session := board.NewSession(api, logger)
	logger.Info("Board client started", zap.String("server", cfg.ServerURL))

	_, err = tea.NewProgram(ui.New(session, cfg.RequestTimeout), tea.WithAltScreen()).Run()
	return err
}
