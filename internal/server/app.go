// Package server initializes and runs the taskkeeper server. It opens the
// database, applies migrations, builds the services, and runs the HTTP and
// gRPC endpoints until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	health *services.HealthService
	http   *httpserver.Server
	grpc   *gs.GRPCServer
}

// NewApp opens the database, runs migrations and builds every service.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, db, rm, loc), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, loc *time.Location) *App {
	us := services.NewUserService(db, rm, logger)
	ss := services.NewSessionService(us, auth.NewRegistry(), c.SecretKey, c.SessionValidityDuration, logger)
	ts := services.NewTaskService(db, rm, loc, logger)
	hs := services.NewHealthService(db, logger)

	// A nil *ExportService must not reach the server as a non-nil interface.
	var exporter httpserver.Exporter
	if c.ExportEnabled() {
		exporter = services.NewExportService(ts, c, logger)
	}

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		health: hs,
		http: httpserver.NewServer(c.EndpointAddrHTTP, logger, ss, us, ts, exporter, hs,
			httpserver.Options{CookieSecure: c.CookieSecure}),
	}

	if c.EndpointAddrGRPC != "" {
		app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger)
		hs.Subscribe(app.grpc.SetServing)
	}

	return app
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a signal arrives or ctx is cancelled, then closes the
// database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// Initial status for the gRPC health service; /healthz probes refresh it.
	_ = app.health.Check(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.grpc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
