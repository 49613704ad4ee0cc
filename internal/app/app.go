package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/RecipeApp/internal/config"
)

type App struct {
	Config  *config.Config
	logger  *slog.Logger
	handler http.Handler
	closers []io.Closer
}

// NewApp собирает приложение. closers закрываются при остановке в обратном порядке.
func NewApp(cfg *config.Config, logger *slog.Logger, handler http.Handler, closers ...io.Closer) *App {
	return &App{
		Config:  cfg,
		logger:  logger,
		handler: handler,
		closers: closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает HTTP сервер и блокируется до SIGINT/SIGTERM
func (a *App) Run(ctx context.Context) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting application", "port", a.Config.ServerPort, "storage", a.Config.StorageBackend)

	err := runServer(ctx, a.Config, a.handler, a.logger)

	// аккуратно закрываем ресурсы даже если сервер упал
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("failed to release resources", "error", closeErr)
	}
	if err != nil {
		return err
	}

	a.logger.Info("application stopped")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ошибка закрытия ресурсов: %w", errors.Join(errs...))
	}
	return nil
}
