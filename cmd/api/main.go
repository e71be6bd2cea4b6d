package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"example.com/streakly/internal/app"
	"example.com/streakly/internal/config"
	"example.com/streakly/internal/logger"
	"example.com/streakly/internal/server"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("init")
	}
	srv := server.New(cfg.HTTPAddr, a.Router)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.WithField("addr", cfg.HTTPAddr).WithField("storage", cfg.Storage).Info("listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server error")
	}
}
