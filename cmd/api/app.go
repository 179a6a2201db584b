package main

import (
	"context"
	"log/slog"

	"current-weather/internal/config"
	"current-weather/internal/daypart"
	"current-weather/internal/pipeline"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humagin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// App encapsulates application dependencies
type App struct {
	router    *gin.Engine
	api       huma.API
	logger    *slog.Logger
	store     *pipeline.Store
	refresher *pipeline.Refresher
	backdrops daypart.Backdrops
	registry  *prometheus.Registry
}

// NewApp creates a new application serving the given pipeline. Refreshes
// triggered over HTTP run under ctx.
func NewApp(ctx context.Context, cfg *config.Config, orch *pipeline.Orchestrator, clock pipeline.Clock, backdrops daypart.Backdrops, registry *prometheus.Registry, logger *slog.Logger) *App {
	// Set Gin mode from configuration
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())

	humaConfig := huma.DefaultConfig("Current Weather API", "1.0.0")
	humaConfig.Info.Description = "Current place, temperature and time of day for the device location"
	humaConfig.Servers = []*huma.Server{
		{URL: "http://localhost" + cfg.GetServerAddr(), Description: "Development server"},
	}

	app := &App{
		router:    router,
		api:       humagin.New(router, humaConfig),
		logger:    logger.With("component", "api"),
		store:     orch.Store(),
		refresher: pipeline.NewRefresher(ctx, orch, orch.Store(), clock, logger),
		backdrops: backdrops,
		registry:  registry,
	}

	app.registerRoutes()

	logger.Info("application initialized")
	return app
}

// Handler exposes the router for http.Server and tests
func (app *App) Handler() *gin.Engine {
	return app.router
}
