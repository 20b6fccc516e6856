package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/redplanet/api/handler"
	"github.com/use-agent/redplanet/api/middleware"
	"github.com/use-agent/redplanet/config"
	"github.com/use-agent/redplanet/storage"
	"github.com/use-agent/redplanet/webhook"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	POST /api/v1/scrape:  Auth (if enabled) → RateLimit
//
// The page routes and the read-only API stay open.
func NewRouter(run handler.Runner, st storage.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	hook := webhook.New(cfg.Webhook)

	r.GET("/", handler.Index(st))
	r.GET("/scrape", handler.Trigger(run, st, hook))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(st, startTime))
	v1.GET("/mars", handler.Mars(st))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))
	protected.POST("/scrape", handler.Scrape(run, st, hook))

	return r
}
