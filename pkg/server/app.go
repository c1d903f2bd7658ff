package server

import (
	"context"
	"fmt"

	domrepo "FinPanel/internal/domain/repository"
	"FinPanel/pkg/config"
	xhttp "FinPanel/pkg/http"
	pkgkafka "FinPanel/pkg/kafka"
	applogger "FinPanel/pkg/logger"
)

// App encapsulates the service lifecycle: HTTP API plus the optional
// rebuild consumer. Closing stores and clients is left to the caller.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	http     *xhttp.Server
	consumer *pkgkafka.Consumer
	handlers []pkgkafka.MessageHandler
	store    domrepo.PanelStore
}

// New creates an App. consumer may be nil when Kafka is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	store domrepo.PanelStore,
	consumer *pkgkafka.Consumer,
	handlers ...pkgkafka.MessageHandler,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		http:     httpServer,
		consumer: consumer,
		handlers: handlers,
		store:    store,
	}
}

// Run starts everything and blocks until ctx is done, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Health(ctx); err != nil {
		return fmt.Errorf("panel store: %w", err)
	}

	if a.consumer != nil {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
	}

	if err := a.http.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("finpanel started",
		applogger.String("environment", a.cfg.Environment),
		applogger.String("store", a.cfg.Store.Backend),
		applogger.Int("panels", len(a.cfg.Panels)),
		applogger.Bool("kafka", a.consumer != nil),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first (HTTP, then consumer) so no build starts
// while resources are being closed.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.http.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.log.Info("shutdown complete")
	return firstErr
}
