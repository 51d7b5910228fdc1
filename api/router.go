package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/weathercrawl/api/handler"
	"github.com/use-agent/weathercrawl/api/middleware"
	"github.com/use-agent/weathercrawl/config"
	"github.com/use-agent/weathercrawl/metrics"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger
//	API:     Auth (if enabled)
//
// Health and metrics stay outside auth so monitoring probes always work.
func NewRouter(sc handler.WeatherScraper, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(sc, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	protected.POST("/weather", handler.Weather(sc, cfg.Scraper.Timeout))

	return r
}
