package app

import (
	"context"
	"fmt"
	"net"

	"gorm.io/gorm"

	"github.com/yungbote/studyplan-backend/internal/data/db"
	apphttp "github.com/yungbote/studyplan-backend/internal/http"
	"github.com/yungbote/studyplan-backend/internal/observability"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

const ServiceName = "studyplan-backend"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Otel.Endpoint,
		Insecure:    cfg.Otel.Insecure,
		Headers:     cfg.Otel.Headers,
		SampleRatio: cfg.Otel.SampleRatio,
	})

	var (
		pg    *db.PostgresService
		theDB *gorm.DB
	)
	if cfg.DB.Driver != "none" {
		pg, err = db.NewPostgresService(db.Options{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN}, log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init database: %w", err)
		}
		if err := db.AutoMigrateAll(pg.DB()); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		theDB = pg.DB()
	}

	clientset, err := wireClients(cfg, log)
	if err != nil {
		if pg != nil {
			_ = pg.Close()
		}
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log, clientset, reposet)
	handlerset := wireHandlers(log, serviceset)

	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = ServiceName
	}
	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Clients:      clientset,
		Repos:        reposet,
		Services:     serviceset,
		Server:       wireServer(log, serviceName, clientset.Metrics, handlerset),
		pg:           pg,
		otelShutdown: shutdown,
	}, nil
}

// Run serves HTTP until ctx is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("Serving HTTP", "addr", addr)

	err := a.Server.Run(ctx, addr)
	a.Log.Info("HTTP server stopped", "error", err)
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Clients.PlanCache != nil {
		if err := a.Clients.PlanCache.Close(); err != nil {
			a.Log.Warn("plan cache close failed", "error", err)
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
