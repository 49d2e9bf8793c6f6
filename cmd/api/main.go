package main

import (
	"log"

	"contractai-backend/internal/bootstrap"
	"contractai-backend/internal/shared/config"
	"contractai-backend/internal/shared/server"
	"contractai-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	telemetry.SetLevel(cfg.LogLevel)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr, "app": cfg.AppName, "environment": cfg.Environment})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
