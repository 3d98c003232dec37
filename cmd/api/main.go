package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"bookingform/internal/app"
	"bookingform/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	cfg.ConfigureLogging()

	a, err := app.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("init app")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
