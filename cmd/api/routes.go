package main

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// registerRoutes sets up all API endpoints
func (app *App) registerRoutes() {
	// Health check endpoint
	huma.Register(app.api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Ping health check",
		Description: "Check if the API is running",
		Tags:        []string{"health"},
	}, app.handlePing)

	huma.Register(app.api, huma.Operation{
		OperationID: "get-conditions",
		Method:      http.MethodGet,
		Path:        "/conditions",
		Summary:     "Current conditions",
		Description: "Latest resolution state with the backdrop for its time of day",
		Tags:        []string{"conditions"},
	}, app.handleGetConditions)

	huma.Register(app.api, huma.Operation{
		OperationID:   "refresh",
		Method:        http.MethodPost,
		Path:          "/refresh",
		Summary:       "Refresh conditions",
		Description:   "Start a new resolution run without waiting for it to finish",
		Tags:          []string{"conditions"},
		DefaultStatus: http.StatusAccepted,
	}, app.handleRefresh)

	app.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})))

	// Swagger UI over the document huma generates
	app.router.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/" {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
			return
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.json"))(c)
	})
}
