package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dolarcaro-service/internal/bootstrap"
	infraconfig "dolarcaro-service/internal/infrastructure/config"
	httpserver "dolarcaro-service/internal/infrastructure/http"
	"dolarcaro-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()

	app, err := bootstrap.Build(context.Background())
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	addr := ":" + app.Cfg.Port
	mux := httpserver.NewRouter(httpserver.NewServer(app.Svc, app.Ping))
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
