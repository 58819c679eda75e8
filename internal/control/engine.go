// Package control wires the relocation engine together: registry store, drag
// session, projector previews, persistence reconciler, and sync scheduler.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"relocator/internal/core/domain"
	"relocator/internal/core/registry"
	"relocator/internal/engine/drag"
	"relocator/internal/engine/reconcile"
	"relocator/internal/engine/resync"
	redisclient "relocator/internal/infra/redis"
)

// API is the inventory backend contract the engine consumes. Implemented by
// inventory.Client; tests substitute mocks.
type API interface {
	ListSites(ctx context.Context) ([]domain.Site, error)
	ListRoomsWithItems(ctx context.Context, site string) (domain.Registry, error)
	MoveItem(ctx context.Context, site, sku, destRoom string) error
}

// Config holds the engine configuration.
type Config struct {
	Site               string // empty selects the first site the backend lists
	SentinelRoom       string
	ActivationDistance float64
	RefreshDelay       time.Duration
	PollInterval       time.Duration
	API                API
	Queue              *redisclient.Client // optional shared refresh queue
	Logger             *slog.Logger
}

// Engine is the client-side relocation engine: it owns the registry the
// presentation layer renders and the gesture entry points that drive it.
type Engine struct {
	cfg        Config
	store      *registry.Store
	scheduler  *resync.Scheduler
	reconciler *reconcile.Reconciler
	session    *drag.Session
	log        *slog.Logger
	cancel     context.CancelFunc
}

// NewEngine creates a new Engine instance with all dependencies initialized.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.API == nil {
		return nil, errors.New("inventory API is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	store := registry.NewStore(cfg.SentinelRoom)

	scheduler := resync.New(resync.Config{
		Fetcher:      cfg.API,
		Store:        store,
		Queue:        cfg.Queue,
		RefreshDelay: cfg.RefreshDelay,
		PollInterval: cfg.PollInterval,
		Logger:       cfg.Logger,
	})

	reconciler := reconcile.New(cfg.API, store, scheduler)

	session := drag.NewSession(drag.Config{
		Store:              store,
		Committer:          reconciler,
		Sync:               scheduler,
		ActivationDistance: cfg.ActivationDistance,
		Logger:             cfg.Logger,
	})

	return &Engine{
		cfg:        cfg,
		store:      store,
		scheduler:  scheduler,
		reconciler: reconciler,
		session:    session,
		log:        cfg.Logger,
	}, nil
}

// Start performs the initial registry load and starts the refresh loop.
func (e *Engine) Start(ctx context.Context) error {
	site := e.cfg.Site
	if site == "" {
		sites, err := e.cfg.API.ListSites(ctx)
		if err != nil {
			return fmt.Errorf("list sites: %w", err)
		}
		if len(sites) == 0 {
			return errors.New("backend has no sites")
		}
		site = sites[0].ID
	}

	if err := e.scheduler.Resync(ctx, site); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	e.log.Info("registry loaded",
		"site", site, "items", e.store.Snapshot().TotalItems())

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go func() {
		if err := e.scheduler.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			e.log.Error("refresh loop failed", "error", err)
		}
	}()
	return nil
}

// Stop stops the refresh loop.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}
	return nil
}

// Resync forces a full reload of the registry from the backend.
func (e *Engine) Resync(ctx context.Context) error {
	return e.scheduler.Resync(ctx, e.store.Site())
}

// Snapshot returns the current registry for rendering. Read-only.
func (e *Engine) Snapshot() domain.Registry {
	return e.store.Snapshot()
}

// DisplayRooms returns the room names rendered by default, sentinel excluded.
func (e *Engine) DisplayRooms() []string {
	return e.store.DisplayRooms()
}

// Site returns the loaded site.
func (e *Engine) Site() string {
	return e.store.Site()
}

// ActiveDraggedItem returns the SKU being dragged, if any.
func (e *Engine) ActiveDraggedItem() (string, bool) {
	return e.session.Active()
}

// DragState returns the current drag session state.
func (e *Engine) DragState() drag.State {
	return e.session.State()
}

// Gesture entry points, forwarded to the drag session.

func (e *Engine) Press(sku string, x, y float64) error { return e.session.Press(sku, x, y) }
func (e *Engine) Move(x, y float64) error              { return e.session.Move(x, y) }
func (e *Engine) Release()                             { e.session.Release() }
func (e *Engine) BeginDrag(sku string) error           { return e.session.BeginDrag(sku) }
func (e *Engine) Hover(target string) error            { return e.session.Hover(target) }

func (e *Engine) Drop(ctx context.Context, target string) error {
	return e.session.Drop(ctx, target)
}

func (e *Engine) CancelDrag(ctx context.Context) error {
	return e.session.Cancel(ctx)
}
