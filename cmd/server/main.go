package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/failvault/internal/server"
	"github.com/dmitrijs2005/failvault/internal/server/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(2)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		slog.Error("startup", "error", err)
		os.Exit(1)
	}

	app.Run(context.Background())
}
