package app

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"agency-budget-go/internal/config"
	"agency-budget-go/internal/db"
	"agency-budget-go/internal/domain/autosave"
	projectdomain "agency-budget-go/internal/domain/project"
	"agency-budget-go/internal/domain/realtime"
	"agency-budget-go/internal/repository/inmemory"
	"agency-budget-go/internal/repository/projectstore"
	"agency-budget-go/internal/transport/httpserver"
	"agency-budget-go/internal/transport/httpserver/handler"
	"agency-budget-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	saver      *autosave.Saver
	log        logger.Logger
}

func New(log logger.Logger) (*App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	var (
		repo   projectdomain.Repository
		dbConn *gorm.DB
	)
	if cfg.DB.Driver == db.DriverMemory {
		log.Info("app: using in-memory project store")
		repo = inmemory.NewProjectRepository()
	} else {
		log.Info("app: initializing database", "driver", cfg.DB.Driver)
		dbConn, err = db.Open(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(dbConn, cfg.DB.Driver); err != nil {
			return nil, err
		}
		repo = projectstore.NewGorm(dbConn)
	}

	saver := autosave.New(cfg.Autosave.Debounce, cfg.Autosave.SaveTimeout, func(ctx context.Context, p projectdomain.Project) error {
		return repo.Upsert(ctx, &p)
	}, log)

	var hub *realtime.Hub
	var pub projectdomain.Publisher
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(cfg.Realtime.SubscriberBuffer)
		pub = hub
	}

	projects := projectdomain.NewService(repo, saver, pub)
	handlers := handler.New(projects, saver, hub, cfg.Locale, cfg.CORSOrigins, log)
	router := httpserver.NewRouter(cfg, handlers)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		saver:      saver,
		log:        log,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// Close flushes pending autosaves before the store goes away.
func (a *App) Close() error {
	if err := a.saver.Close(); err != nil {
		a.log.Error("app: autosave flush failed", "err", err)
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
