package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lectorium/lectorium/internal/api"
	"github.com/lectorium/lectorium/internal/app"
	"github.com/lectorium/lectorium/internal/app/maintenance"
	"github.com/lectorium/lectorium/internal/assign"
	iauth "github.com/lectorium/lectorium/internal/auth"
	"github.com/lectorium/lectorium/internal/database"
	"github.com/lectorium/lectorium/internal/identity"
	"github.com/lectorium/lectorium/internal/intake"
	"github.com/lectorium/lectorium/internal/services"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Sweeper *maintenance.Sweeper
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, workflow services, retention
// sweeper, and the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = database.Open(convertDatabaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(stack.DB); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	notificationSvc, err := services.NewNotificationService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	submissionSvc, err := services.NewSubmissionService(stack.DB, notificationSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise submission service: %w", err)
	}

	if cfg.Auth.Bootstrap.Username != "" && cfg.Auth.Bootstrap.Password != "" {
		userSvc, err := services.NewUserService(stack.DB)
		if err != nil {
			return nil, fmt.Errorf("initialise user service: %w", err)
		}
		user, err := userSvc.EnsureBootstrapUser(context.Background(), services.CreateUserInput{
			Username:    cfg.Auth.Bootstrap.Username,
			Email:       cfg.Auth.Bootstrap.Email,
			Password:    cfg.Auth.Bootstrap.Password,
			DisplayName: cfg.Auth.Bootstrap.DisplayName,
		})
		if err != nil {
			return nil, fmt.Errorf("seed bootstrap user: %w", err)
		}
		log.Info("bootstrap user ensured", zap.String("username", user.Username))
	}

	identities, err := identity.NewDatabaseProvider(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise identity provider: %w", err)
	}

	in, err := intake.New(assign.New(), identities, submissionSvc, intake.WithPrefix(cfg.Uploads.Prefix))
	if err != nil {
		return nil, fmt.Errorf("initialise upload intake: %w", err)
	}

	if cfg.Retention.Enabled {
		stack.Sweeper, err = maintenance.NewSweeper(notificationSvc,
			maintenance.WithSchedule(cfg.Retention.Schedule),
			maintenance.WithRetentionWindow(cfg.Retention.Window),
			maintenance.WithBatchLimit(cfg.Retention.BatchLimit),
		)
		if err != nil {
			return nil, fmt.Errorf("initialise retention sweeper: %w", err)
		}
		if err := stack.Sweeper.Start(); err != nil {
			return nil, fmt.Errorf("start retention sweeper: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg, in)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	return database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	}
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Sweeper != nil {
		stopCtx := s.Sweeper.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Sweeper.RunOnce(ctx); err != nil {
			log.Warn("retention shutdown sweep failed", zap.Error(err))
		}
	}

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("close database", zap.Error(err))
			}
		}
	}
}
