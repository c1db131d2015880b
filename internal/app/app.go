// Package app wires the viewer's components together.
package app

import (
	"context"
	"errors"
	"fmt"

	"cache-viewer/internal/activity"
	"cache-viewer/internal/cacheclient"
	"cache-viewer/internal/config"
	"cache-viewer/internal/database"
	"cache-viewer/internal/handlers"
	"cache-viewer/internal/models"
	"cache-viewer/internal/orchestrator"
	"cache-viewer/internal/realtime"
	"cache-viewer/internal/store"
	"cache-viewer/internal/synchronizer"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App is one running viewer: a single store, synchronizer and orchestrator
// over one remote cache service.
type App struct {
	Client       *cacheclient.Client
	Store        *store.Store
	Synchronizer *synchronizer.Synchronizer
	Orchestrator *orchestrator.Orchestrator
	// Activity is nil when the journal is disabled.
	Activity *activity.Repository

	hub *realtime.Hub
	db  *gorm.DB
	log zerolog.Logger
}

// New builds and starts a viewer from cfg. The first refresh is already under way
// when New returns.
func New(cfg config.Config, log zerolog.Logger) (*App, error) {
	client, err := cacheclient.New(cfg.RemoteURL,
		cacheclient.WithTimeout(cfg.RequestTimeout),
		cacheclient.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	a := &App{
		Client: client,
		hub:    realtime.NewHub(),
		log:    log,
	}
	a.Store = store.New(a.hub)

	orchOpts := []orchestrator.Option{orchestrator.WithLogger(log)}
	if cfg.JournalEnabled {
		a.db, err = database.Open(cfg.JournalPath)
		if err != nil {
			a.hub.Close()
			return nil, err
		}
		a.Activity = activity.NewRepository(a.db)
		orchOpts = append(orchOpts, orchestrator.WithRecorder(a.Activity))
	}

	a.Synchronizer, err = synchronizer.New(client, a.Store, synchronizer.Options{
		Interval: cfg.RefreshInterval,
		Logger:   log,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("start synchronizer: %w", err)
	}
	a.Orchestrator = orchestrator.New(client, a.Synchronizer, orchOpts...)

	log.Info().
		Str("remote", cfg.RemoteURL).
		Dur("interval", a.Synchronizer.Interval()).
		Bool("journal", a.Activity != nil).
		Msg("viewer started")
	return a, nil
}

// Subscribe streams snapshots, starting with the current one. The channel closes
// when the returned cancel func is called or the app shuts down.
func (a *App) Subscribe() (<-chan models.Snapshot, func()) {
	sub := realtime.NewSubscription()
	unsubscribe := a.Store.Subscribe(sub)
	return sub.C(), func() {
		unsubscribe()
		sub.Close()
	}
}

// Gateway returns the HTTP handler over this app's intents and store.
func (a *App) Gateway() *handlers.GatewayHandler {
	var lister handlers.ActivityLister
	if a.Activity != nil {
		lister = a.Activity
	}
	return handlers.NewGatewayHandler(a.Orchestrator, a.Store, lister, a.log)
}

// Recent lists journaled intents, newest first.
func (a *App) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if a.Activity == nil {
		return nil, errors.New("activity journal is disabled")
	}
	return a.Activity.Recent(ctx, limit)
}

// Close tears the viewer down: the timer and any in-flight refresh stop first,
// then the store empties and every subscriber is closed.
func (a *App) Close() error {
	var errs []error
	if a.Synchronizer != nil {
		errs = append(errs, a.Synchronizer.Close())
	}
	a.Store.Close()
	a.hub.Close()
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}
	a.log.Info().Msg("viewer stopped")
	return errors.Join(errs...)
}
