// Package server initializes and runs the Estately API server. It wires the
// database, repositories, and services together, starts the HTTP listener,
// and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/estately/estately/internal/logging"
	"github.com/estately/estately/internal/obs"
	"github.com/estately/estately/internal/server/config"
	"github.com/estately/estately/internal/server/httpapi"
	"github.com/estately/estately/internal/server/repositories/repomanager"
	"github.com/estately/estately/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.API
}

// NewApp builds the full application graph. Misconfiguration, an unreachable
// database, and failed migrations all surface here so the process exits at
// startup rather than limping along.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tokenService, err := services.NewTokenService(db, rm, cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	userService := services.NewUserService(db, rm, tokenService)
	propertyService := services.NewPropertyService(db, rm)
	bookingService := services.NewBookingService(db, rm)
	favoriteService := services.NewFavoriteService(db, rm)
	imageService := services.NewImageService(db, rm, cfg)

	obs.Init()

	api := httpapi.New(logger, db, httpapi.Services{
		Users:      userService,
		Tokens:     tokenService,
		Properties: propertyService,
		Bookings:   bookingService,
		Favorites:  favoriteService,
		Images:     imageService,
	})

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the HTTP server and blocks until the context is canceled or the
// listener fails. In-flight requests get shutdownTimeout to finish.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "http server error", "error", err.Error())
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
