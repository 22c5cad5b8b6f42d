package entrypoint

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sunr3d/archiver-status/internal/access"
	"github.com/sunr3d/archiver-status/internal/actions"
	"github.com/sunr3d/archiver-status/internal/api"
	"github.com/sunr3d/archiver-status/internal/config"
	"github.com/sunr3d/archiver-status/internal/events"
	"github.com/sunr3d/archiver-status/internal/hooks"
	"github.com/sunr3d/archiver-status/internal/infra/ckan"
	"github.com/sunr3d/archiver-status/internal/infra/inmem"
	"github.com/sunr3d/archiver-status/internal/infra/postgres"
	"github.com/sunr3d/archiver-status/internal/infra/rabbitmq"
	"github.com/sunr3d/archiver-status/internal/interfaces/infra"
	"github.com/sunr3d/archiver-status/internal/interfaces/services"
	"github.com/sunr3d/archiver-status/internal/metrics"
	"github.com/sunr3d/archiver-status/internal/middleware"
	"github.com/sunr3d/archiver-status/internal/pipe"
	"github.com/sunr3d/archiver-status/internal/server"
	"github.com/sunr3d/archiver-status/internal/services/archival_service"
)

// App - собранный граф зависимостей; его используют и сервер, и команды CLI.
type App struct {
	Service  services.ArchivalService
	Store    infra.StatusStore
	Catalog  infra.Catalog
	Bus      *events.Bus
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	closers []func() error
	logger  *zap.Logger
}

func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{logger: log, Registry: prometheus.NewRegistry()}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = metrics.New(cfg.MetricsNamespace, app.Registry)

	var claims infra.ClaimStore
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		app.Store = postgres.NewStatusStore(db, log)
		claims = postgres.NewClaimStore(db, log)
	default:
		app.Store = inmem.New(log)
		claims = inmem.NewClaimStore(log)
	}

	var localCatalog *inmem.Catalog
	switch cfg.CatalogBackend {
	case config.BackendCKAN:
		c, err := ckan.New(cfg.CatalogURL, cfg.CatalogAPIKey, cfg.CatalogTimeout, log)
		if err != nil {
			return nil, err
		}
		app.Catalog = c
	default:
		localCatalog = inmem.NewCatalog(log)
		app.Catalog = localCatalog
	}

	sink := pipe.NewLogSink(log)
	var dispatcher infra.Dispatcher
	switch cfg.DispatchBackend {
	case config.BackendRabbitMQ:
		d, err := rabbitmq.New(cfg.RabbitMQURL, cfg.RabbitMQQueue, log, sink)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, d.Close)
		dispatcher = d
	default:
		dispatcher = inmem.NewDispatcher(log, sink)
	}

	app.Service = archival_service.New(log, cfg, archival_service.Deps{
		Store:      app.Store,
		Claims:     claims,
		Dispatcher: dispatcher,
		Catalog:    app.Catalog,
		Metrics:    app.Metrics,
	})

	app.Bus = events.NewBus(log)
	if localCatalog != nil {
		if err := app.Bus.Subscribe(events.NewCatalogSubscriber(localCatalog)); err != nil {
			return nil, err
		}
	}
	if err := app.Bus.Subscribe(events.NewArchivalSubscriber(app.Service, log)); err != nil {
		return nil, err
	}

	log.Info("зависимости собраны",
		zap.String("store", cfg.StoreBackend),
		zap.String("dispatch", cfg.DispatchBackend),
		zap.String("catalog", cfg.CatalogBackend),
		zap.String("classifier", cfg.ClassifierMode),
	)
	ok = true
	return app, nil
}

func (a *App) Router(cfg *config.Config) http.Handler {
	gate := access.NewGate(access.DefaultRules())

	controller := api.New(api.Deps{
		Service:  a.Service,
		Actions:  actions.New(a.Service, gate),
		Gate:     gate,
		Resolver: access.NewKeyResolver(cfg.AdminAPIKeys),
		Bus:      a.Bus,
		Catalog:  a.Catalog,
		Enricher: hooks.NewViewEnricher(a.Service, a.logger),
		Store:    a.Store,
	}, a.logger)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(a.logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Metrics(a.Metrics))
	r.Use(middleware.ReqLogger(a.logger))
	r.Use(middleware.JSONValidator())

	controller.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	return r
}

func (a *App) Close() error {
	var result *multierror.Error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	a.closers = nil
	return result.ErrorOrNil()
}

func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app, err := Build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("не удалось собрать сервис: %w", err)
	}
	defer app.Close()

	srv := server.New(cfg.HTTPPort, app.Router(cfg), log, app.Service)
	return srv.Start(ctx)
}

// Migrate применяет схему PostgreSQL.
func Migrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.StoreBackend != config.BackendPostgres {
		return fmt.Errorf("%w: миграции доступны только для STORE_BACKEND=postgres", config.ErrInvalidConfig)
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	log.Info("миграции применены")
	return nil
}
