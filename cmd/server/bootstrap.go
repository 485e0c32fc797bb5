package main

import (
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/handlers"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
	"github.com/taskforge/taskforge/internal/utils"
	"github.com/taskforge/taskforge/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the
// application.
type appServices struct {
	cfg        *config.Config
	revocation *services.RevocationService

	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	projectHandler *handlers.ProjectHandler
	taskHandler    *handlers.TaskHandler
}

// bootstrap initializes all application dependencies: database, services,
// schedulers, bootstrap admin.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedAdminUser(&cfg.Admin); err != nil {
		logger.Warn().Err(err).Msg("Failed to create bootstrap admin user")
	}

	db := models.GetDB()

	revocation := services.NewRevocationService(db)
	revocation.StartPurgeScheduler()

	return &appServices{
		cfg:            cfg,
		revocation:     revocation,
		authHandler:    handlers.NewAuthHandler(db, cfg, revocation),
		userHandler:    handlers.NewUserHandler(db),
		projectHandler: handlers.NewProjectHandler(db),
		taskHandler:    handlers.NewTaskHandler(db),
	}
}

// shutdown gracefully stops background services.
func (s *appServices) shutdown() {
	s.revocation.StopPurgeScheduler()
	logger.Info().Msg("All schedulers stopped")
}
