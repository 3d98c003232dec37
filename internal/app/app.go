// Package app wires configuration, storage, gateways and HTTP routes into a
// runnable booking form server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"bookingform/internal/config"
	"bookingform/internal/database"
	"bookingform/internal/gateway"
	"bookingform/internal/middleware"
	"bookingform/internal/modules/bookingform"
	"bookingform/internal/pkg/jwt"
	"bookingform/internal/repository"
)

const tokenIssuer = "bookingform"

type App struct {
	Router  *gin.Engine
	Service *bookingform.Service

	cfg     *config.Config
	async   *gateway.Async
	closers []func() error
}

// NewGateway builds the submission chain described by cfg: HTTP delivery to
// one or more receivers, or log-only, behind the database outbox when one is
// configured.
func NewGateway(cfg *config.Config, submissions *repository.SubmissionRepository) gateway.Gateway {
	var gw gateway.Gateway = gateway.Log{}

	urls := cfg.GatewayURLs()
	if len(urls) > 0 {
		signer := jwt.New(cfg.GatewaySecret, tokenIssuer, 5*time.Minute)
		receivers := lo.Map(urls, func(u string, _ int) gateway.Gateway {
			return gateway.NewHTTP(u, signer, cfg.GatewayTimeout)
		})
		gw = receivers[0]
		if len(receivers) > 1 {
			gw = gateway.Fanout(receivers)
		}
	}
	if submissions != nil {
		gw = gateway.NewOutbox(submissions, gw)
	}
	return gw
}

func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	var submissions *repository.SubmissionRepository
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		submissions = repository.NewSubmissionRepository(db)
	}

	a.async = gateway.NewAsync(NewGateway(cfg, submissions), cfg.GatewayQueueSize)

	opts := []bookingform.Option{}
	if submissions != nil {
		opts = append(opts, bookingform.WithSubmissions(submissions))
	}
	a.Service = bookingform.NewService(a.async, cfg.SessionTTL, opts...)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Router = a.routes()
	return a, nil
}

func (a *App) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(),
		middleware.CORS(a.cfg.AllowedOrigins...),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := bookingform.NewHandler(a.Service)
	v1 := r.Group("/api/v1")
	{
		h.RegisterRoutes(v1)

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth(a.cfg.InternalToken))
		h.RegisterInternalRoutes(internal)
	}

	bookingform.NewWSHandler(a.Service, a.cfg.AllowedOrigins...).RegisterRoutes(r.Group(""))
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", a.cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

// Close drains pending submissions and releases resources.
func (a *App) Close() {
	a.Service.Close()
	a.async.Close()
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.WithError(err).Warn("close resource")
		}
	}
}
