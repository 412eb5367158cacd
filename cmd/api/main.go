package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/bootstrap"
	"ingest-backend/internal/shared/config"
	"ingest-backend/internal/shared/server"
	"ingest-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	telemetry.Init(cfg.LogLevel)
	defer func() { _ = telemetry.Sync() }()

	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.stopped", map[string]any{"err": err})
		log.Fatalf("server error: %v", err)
	}
}
