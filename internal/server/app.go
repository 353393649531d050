// Package server initializes and runs the planner sync server. It
// applies database migrations, wires the repositories and the HTTP
// API, and handles graceful shutdown.
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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/selfplanner/internal/logging"
	"github.com/dmitrijs2005/selfplanner/internal/server/config"
	"github.com/dmitrijs2005/selfplanner/internal/server/httpapi"
	"github.com/dmitrijs2005/selfplanner/internal/server/migrations"
	"github.com/dmitrijs2005/selfplanner/internal/server/repo/postgres"
)

type App struct {
	config *config.Config
	logger logging.Logger
	pool   *pgxpool.Pool
	router *gin.Engine
}

// runMigrations applies the embedded goose scripts over a short-lived
// database/sql connection; the pgx pool is opened afterwards.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx := context.Background()
	if err := runMigrations(ctx, c.DatabaseDSN); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	pool, err := newPool(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	users := postgres.NewUsersRepo(pool)
	planner := postgres.NewPlannerRepo(pool)

	secret := []byte(c.SecretKey)
	h := httpapi.NewHandler(users, planner, logger, httpapi.NewProm(), secret, c.TokenValidityDuration)
	router := httpapi.NewRouter(h, logger, c.Env, secret)

	return &App{config: c, logger: logger, pool: pool, router: router}, nil
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.pool.Close()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.EndpointAddr,
		Handler:           app.router,
		ReadHeaderTimeout: httpapi.ReadHeaderTimeout,
		ReadTimeout:       httpapi.ReadTimeout,
		WriteTimeout:      httpapi.WriteTimeout,
		IdleTimeout:       httpapi.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "server failed", "err", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()
	app.logger.Info(ctx, "server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "graceful shutdown failed", "err", err)
		return
	}
	app.logger.Info(shutdownCtx, "shutdown complete")
}
