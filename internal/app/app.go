// Package app assembles the dashboard components from a Config.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-dashboard/internal/config"
	"github.com/rxtech-lab/argo-dashboard/internal/dataset"
	"github.com/rxtech-lab/argo-dashboard/internal/engine"
	"github.com/rxtech-lab/argo-dashboard/internal/engine/cache"
	"github.com/rxtech-lab/argo-dashboard/internal/indicator"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/metrics"
	"github.com/rxtech-lab/argo-dashboard/internal/refresh"
	"github.com/rxtech-lab/argo-dashboard/internal/server"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata/provider"
)

const shutdownTimeout = 5 * time.Second

// App holds the wired components of one dashboard instance.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Store     *dataset.Store
	Engine    *engine.Engine
	Refresher *refresh.Refresher
}

// BuildLoader returns the bar source described by cfg.DataSource.
func BuildLoader(cfg *config.Config, log *logger.Logger) (marketdata.Loader, error) {
	switch cfg.DataSource.Type {
	case config.DataSourceCSV:
		return marketdata.NewCSVLoader(cfg.DataSource.Path, log), nil
	case config.DataSourceParquet:
		return marketdata.NewParquetLoader(cfg.DataSource.Path, marketdata.ParquetOptions{Symbol: cfg.Symbol}, log), nil
	case config.DataSourcePolygon:
		client, err := provider.NewPolygonClient(cfg.DataSource.PolygonAPIKey, log)
		if err != nil {
			return nil, err
		}

		return marketdata.NewPolygonLoader(client, cfg.Symbol, cfg.PolygonStartDate(), log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "unsupported data source type: %s", cfg.DataSource.Type)
	}
}

// New wires an App over the loader chosen by cfg.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	loader, err := BuildLoader(cfg, log)
	if err != nil {
		return nil, err
	}

	return NewWithLoader(cfg, loader, log), nil
}

// NewWithLoader wires an App over an explicit loader.
func NewWithLoader(cfg *config.Config, loader marketdata.Loader, log *logger.Logger) *App {
	if log == nil {
		log = logger.NewNopLogger()
	}

	m := metrics.NewMetrics()
	store := dataset.NewStore()

	var resultCache cache.Cache
	if cfg.Cache.MaxEntries > 0 {
		resultCache = cache.NewCacheV1(cfg.Cache.MaxEntries)
	}

	return &App{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		Store:     store,
		Engine:    engine.NewEngine(cfg.Symbol, indicator.NewDefaultRegistry(), resultCache, m, log),
		Refresher: refresh.NewRefresher(loader, store, m, log, cfg.RefreshTimeout()),
	}
}

// Load performs the initial dataset load.
func (a *App) Load(ctx context.Context) (dataset.Snapshot, error) {
	return a.Refresher.RefreshNow(ctx)
}

// NewServer creates the HTTP server and subscribes it to refresh events.
func (a *App) NewServer() *server.Server {
	srv := server.NewServer(a.Engine, a.Store, a.Refresher, a.Metrics, server.Options{
		DefaultParams:  a.Config.IndicatorParams(),
		AllowedOrigins: a.Config.Server.AllowedOrigins,
	}, a.Log)
	a.Refresher.OnRefresh(srv.NotifyRefresh)

	return srv
}

// Serve loads the dataset, starts the refresh schedule and the HTTP server, and
// blocks until ctx is cancelled. A failed initial load is logged and the server
// still starts; it reports 503 until a later refresh succeeds.
func (a *App) Serve(ctx context.Context, ready func(address string)) error {
	if _, err := a.Load(ctx); err != nil {
		a.Log.Error("Initial load failed, serving without data", zap.Error(err))
	}

	if a.Config.ScheduleEnabled() {
		if err := a.Refresher.Start(a.Config.Refresh.Schedule); err != nil {
			return err
		}
		defer a.Refresher.Stop()
	}

	srv := a.NewServer()
	if err := srv.Start(a.Config.Server.Address); err != nil {
		return err
	}

	if ready != nil {
		ready(srv.Address())
	}

	<-ctx.Done()

	a.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
