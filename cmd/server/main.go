package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/api"
	"github.com/fleetglue/server/internal/auth"
	"github.com/fleetglue/server/internal/config"
	"github.com/fleetglue/server/internal/logs"
	"github.com/fleetglue/server/internal/ratelimit"
	"github.com/fleetglue/server/internal/repository"
	"github.com/fleetglue/server/internal/service"
)

func main() {
	cfg := config.MustLoad()

	logs.Init(logs.Options{
		Level:  cfg.Logs.Level,
		Format: cfg.Logs.Format,
	})

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		logs.Logger.Fatalf("failed to set up database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		logs.Logger.Fatalf("failed to migrate database: %v", err)
	}

	repo := repository.NewGormRepository(db)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.DeviceJWTSecret)
	limiter := ratelimit.NewMemoryLimiter(cfg.DeviceAuth.RateLimit, cfg.DeviceAuth.RateWindow)
	svc := service.NewDefaultService(repo, tokens, limiter)
	handler := api.NewHandler(svc, tokens, cfg.Auth.SecureCookies)

	router := gin.Default()
	handler.SetupRoutes(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logs.Logger.Infof("HTTP listening on %s", addr)
	if err := router.Run(addr); err != nil {
		logs.Logger.Fatalf("failed to start server: %v", err)
	}
}
