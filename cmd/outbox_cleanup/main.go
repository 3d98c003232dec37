package main

import (
	"context"
	"flag"
	"time"

	log "github.com/sirupsen/logrus"

	"bookingform/internal/config"
	"bookingform/internal/database"
	"bookingform/internal/repository"
)

func main() {
	keep := flag.Duration("keep", 30*24*time.Hour, "retention for delivered submissions")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	cfg.ConfigureLogging()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	n, err := repository.NewSubmissionRepository(db).PruneDelivered(context.Background(), time.Now().Add(-*keep))
	if err != nil {
		log.WithError(err).Fatal("prune submissions failed")
	}
	log.WithField("deleted", n).Info("outbox cleanup completed")
}
