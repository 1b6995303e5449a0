package app

import (
	"context"

	"filadex/config"
	"filadex/internal/controllers"
	"filadex/internal/database"
	"filadex/internal/events"
	"filadex/internal/handlers/middleware"
	"filadex/internal/jobs"
	"filadex/internal/logger"
	"filadex/internal/repositories"
	"filadex/internal/services"
	"filadex/internal/websockets"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	Services    services.Service
	Repository  repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	if err := db.MigrateModels(); err != nil {
		return &App{}, log.Err("failed to migrate models", err)
	}
	if err := db.SeedTaxonomy(); err != nil {
		return &App{}, log.Err("failed to seed taxonomy", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	repos := repositories.New(db)
	svc := services.New(db, config)
	ctrl := controllers.New(svc, repos, eventBus, config, db)

	websocket, err := websockets.New(db, eventBus, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, eventBus, config)

	if config.PrinterIntegrationEnabled() {
		if config.PrinterMQTTBroker != "" {
			if err := svc.PrinterStatus.ConnectTelemetry(); err != nil {
				log.Warn("printer telemetry unavailable", "error", err)
			}
		}

		if config.SchedulerEnabled {
			printerPollJob := jobs.NewPrinterPollJob(svc.PrinterStatus, eventBus, services.Frequent)
			if err := svc.Scheduler.AddJob(printerPollJob); err != nil {
				return &App{}, log.Err("failed to register printer poll job", err)
			}
			log.Info("Registered printer poll job with scheduler")
		}
	}

	if config.SchedulerEnabled {
		if err := svc.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		Websocket:   websocket,
		EventBus:    eventBus,
		Services:    svc,
		Repository:  repos,
		Controllers: ctrl,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.PrinterStatus,
		a.Repository.Material,
		a.Repository.Preset,
		a.Repository.PrintRecord,
		a.Repository.Taxonomy,
		a.Controllers.Inventory,
		a.Controllers.Ledger,
		a.Controllers.Preset,
		a.Controllers.Taxonomy,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.PrinterStatus != nil {
		if closeErr := a.Services.PrinterStatus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
