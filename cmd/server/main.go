package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bx-pool/internal/app"
	"bx-pool/internal/config"
	"bx-pool/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.Init(cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	server, err := app.NewServer(cfg, lg)
	if err != nil {
		lg.Fatal("init server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
