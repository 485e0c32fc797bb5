package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/pkg/logger"
	"github.com/taskforge/taskforge/pkg/response"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)
	response.SetDebug(cfg.Server.Mode == "debug")

	svc := bootstrap(cfg)
	defer svc.shutdown()

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	registerRoutes(r, svc)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
