// Package router assembles the Gin engine: global middleware, health and
// metrics endpoints, and route registration for every domain module.
package router

import (
	nethttp "net/http"
	"time"

	"lead_funnel_backend/internal/config"
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/platform/httpkit"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New builds the engine and mounts all modules.
func New(cfg *config.Config, log *logger.Logger, modules []apphttp.Module) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(metrics.Middleware())
	engine.Use(cors.New(corsConfig(cfg)))

	limiter := httpkit.NewIPRateLimiter(20, 40, log)
	engine.Use(limiter.RateLimit())

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", metrics.Handler())

	ctx := &apphttp.RouterContext{
		Engine:        engine,
		V1:            engine.Group("/api/v1"),
		API:           engine.Group("/api"),
		SubmitLimiter: httpkit.NewSubmitRateLimiter(log),
	}
	for _, m := range modules {
		m.RegisterRoutes(ctx)
		log.Info("module routes registered", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowAll {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return c
}
