package main

import (
	"context"
	"os/signal"
	"syscall"

	"dolarcaro-service/internal/bootstrap"
	"dolarcaro-service/internal/infrastructure/logx"
	"dolarcaro-service/internal/infrastructure/worker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx)
	if err != nil {
		log.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	worker.NewScheduler(app.Svc, app.Cfg.RefreshInterval).Start(ctx)
	log.Info("worker stopped")
}
