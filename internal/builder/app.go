package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deanhq/portfolio-assistant/internal/warmup"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App represents the application with all its components
type App struct {
	server *http.Server
	db     *pgxpool.Pool // nil unless the pgvector backend is selected
	warmer *warmup.Warmer
	logger *zap.Logger
}

// Run starts the HTTP server and the answer warmup, then blocks until a
// shutdown signal or a server error.
func (a *App) Run() error {
	warmCtx, cancelWarm := context.WithCancel(context.Background())
	defer cancelWarm()
	go a.warmer.Run(warmCtx)

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	cancelWarm()
	return a.shutdown()
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	if a.db != nil {
		a.logger.Info("Closing database connections")
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
