package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/lectorium/lectorium/internal/app"
	iauth "github.com/lectorium/lectorium/internal/auth"
	"github.com/lectorium/lectorium/internal/handlers"
	"github.com/lectorium/lectorium/internal/intake"
	"github.com/lectorium/lectorium/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers the
// workflow routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, in *intake.Intake) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if in == nil {
		return nil, fmt.Errorf("intake must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler, err := handlers.NewAuthHandler(db, jwt)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	notificationHandler, err := handlers.NewNotificationHandler(db)
	if err != nil {
		return nil, err
	}

	submissionHandler, err := handlers.NewSubmissionHandler(db, notificationHandler.Service())
	if err != nil {
		return nil, err
	}

	uploadHandler, err := handlers.NewUploadHandler(in)
	if err != nil {
		return nil, err
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	registerSubmissionRoutes(api, submissionHandler)
	registerNotificationRoutes(api, notificationHandler)
	registerUploadRoutes(api, uploadHandler)

	return r, nil
}
