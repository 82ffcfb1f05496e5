// Package server wires the catalog server together: configuration, the
// Postgres-backed repositories, the gRPC endpoint and the metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/failvault/internal/cryptox"
	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/server/config"
	"github.com/dmitrijs2005/failvault/internal/server/metrics"
	"github.com/dmitrijs2005/failvault/internal/server/repositories/records"
	"github.com/dmitrijs2005/failvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/failvault/internal/server/services"

	gs "github.com/dmitrijs2005/failvault/internal/server/grpc"
)

const migrationTimeout = 30 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	metrics        *metrics.Metrics
	catalogService *services.CatalogService
	adminService   *services.AdminService
	storageService *services.StorageService
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	sealer, err := cryptox.NewSealer(c.FindingsPassphrase, c.FindingsSalt)
	if err != nil {
		return nil, fmt.Errorf("findings key: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(records.Options{
		OperatorAddress: c.OperatorAddress,
		Sealer:          sealer,
	})

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		metrics:        metrics.New(),
		catalogService: services.NewCatalogService(db, rm),
		adminService:   services.NewAdminService(c),
		storageService: services.NewStorageService(c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.catalogService,
		app.adminService, app.storageService, app.metrics, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "Starting metrics endpoint", "address", app.config.MetricsAddr)
	if err := app.metrics.Serve(ctx, app.config.MetricsAddr); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
