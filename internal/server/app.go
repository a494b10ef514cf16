// Package server initializes and runs the FinSight backend. It wires
// the identity store, the report browser and the analysis proxy into a
// single HTTP server and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/analysis"
	"github.com/finsight-app/finsight/internal/server/config"
	"github.com/finsight-app/finsight/internal/server/httpapi"
	"github.com/finsight-app/finsight/internal/server/repositories/repomanager"
	"github.com/finsight-app/finsight/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	repoManager repomanager.RepositoryManager
	auth        *services.AuthService
	reports     *services.ReportService
	analysis    *analysis.Client
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewDefault(cfg.LogLevel)

	rm, err := repomanager.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	return &App{
		config:      cfg,
		logger:      logger,
		repoManager: rm,
		auth:        services.NewAuthService(rm, cfg, logger),
		reports:     services.NewReportService(cfg, logger),
		analysis:    analysis.New(cfg.AnalysisAPIBaseURL),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	engine, err := httpapi.Build(httpapi.Options{
		Config:   app.config,
		Logger:   app.logger,
		Auth:     app.auth,
		Reports:  app.reports,
		Analysis: app.analysis,
	})
	if err != nil {
		return fmt.Errorf("router init error: %w", err)
	}

	srv := &http.Server{Addr: app.config.EndpointAddrHTTP, Handler: engine}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
	}

	if err := app.repoManager.Close(); err != nil {
		app.logger.Error(shutdownCtx, "store close error", "error", err)
	}

	return nil
}
