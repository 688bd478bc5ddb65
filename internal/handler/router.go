package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"salt_portal/internal/logger"
	"salt_portal/internal/metrics"
	"salt_portal/internal/middleware"
	"salt_portal/internal/service"
	"salt_portal/internal/utils"
)

// Deps are the collaborators of the reference backend.
type Deps struct {
	Auth     service.AuthService
	Admin    service.AdminService
	JWT      *utils.JWTUtil
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
	Health   func(ctx context.Context) error
}

// NewRouter wires the /api/v1 routes the portal front end calls.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(logger.Recovery(d.Log), logger.GinMiddleware(d.Log), d.Metrics.GinMiddleware())

	router.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	authMW := middleware.JWTAuthMiddleware(d.JWT)
	api := router.Group("/api/v1")
	NewAuthHandler(d.Auth, d.Admin, d.Log).RegisterAuthRoutes(api, authMW)
	NewAdminHandler(d.Admin, d.Log).RegisterAdminRoutes(api, authMW, middleware.AdminMiddleware())

	return router
}
