package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/maatchaa/maatchaa-backend/internal/data/db"
	"github.com/maatchaa/maatchaa-backend/internal/http"
	"github.com/maatchaa/maatchaa-backend/internal/observability"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	ctx          context.Context
	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{Log: log, Cfg: cfg, ctx: ctx, cancel: cancel}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.OtelServiceName,
		Environment: logMode,
	})
	a.Metrics = observability.Init(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	a.pg = pg
	if err := pg.AutoMigrateAll(); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	a.DB = pg.DB()
	a.Repos = wireRepos(a.DB, log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	serviceset, err := wireServices(log, cfg, a.Repos, a.Clients, a.Metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("wire services: %w", err)
	}
	a.Services = serviceset

	handlerset := wireHandlers(ctx, log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	a.Router = wireRouter(log, cfg, a.Metrics, handlerset, middleware)
	return a, nil
}

// Run serves HTTP and, unless disabled, runs the discovery loop until ctx is
// cancelled or either of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	// triggered passes run on the app context; stop them with the group
	go func() {
		<-gctx.Done()
		a.cancel()
	}()

	a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)

	if a.Cfg.RunWorker {
		g.Go(func() error {
			return a.Services.Worker.Run(gctx)
		})
	} else {
		a.Log.Info("RUN_DISCOVERY_WORKER disabled; only triggered discovery will run")
	}

	server := &http.Server{Engine: a.Router}
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return server.Run(gctx, a.Cfg.HTTPAddr)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("closing database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
