// Package resync owns cache invalidation and refetch timing.
//
// Two primitives, with one contract between them: the registry is always
// replaced wholesale from the authoritative snapshot, never patched. Resync
// does it immediately; ScheduleRefresh does it eventually, to reconfirm a
// settled move and pick up any server-side derived fields.
package resync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"relocator/internal/core/domain"
	"relocator/internal/core/registry"
	"relocator/internal/engine/metrics"
	redisclient "relocator/internal/infra/redis"
)

// Fetcher provides the authoritative full snapshot for a site.
type Fetcher interface {
	ListRoomsWithItems(ctx context.Context, site string) (domain.Registry, error)
}

// Config holds scheduler settings.
type Config struct {
	Fetcher      Fetcher
	Store        *registry.Store
	Queue        *redisclient.Client // optional; nil uses the in-process queue
	RefreshDelay time.Duration       // delay between a settle and its reconfirming refetch
	PollInterval time.Duration       // how often the background loop checks for due refreshes
	Logger       *slog.Logger
}

// Scheduler forces and schedules full registry resyncs.
type Scheduler struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time // site -> due, when no redis queue is configured
}

// New creates a scheduler.
func New(cfg Config) *Scheduler {
	if cfg.RefreshDelay <= 0 {
		cfg.RefreshDelay = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scheduler{
		cfg:     cfg,
		log:     cfg.Logger,
		pending: make(map[string]time.Time),
	}
}

// Resync replaces the registry with a freshly fetched authoritative snapshot,
// cancelling any pending speculative preview. Idempotent and safe to call
// redundantly.
func (s *Scheduler) Resync(ctx context.Context, site string) error {
	return s.resync(ctx, site, "forced")
}

func (s *Scheduler) resync(ctx context.Context, site, reason string) error {
	reg, err := s.cfg.Fetcher.ListRoomsWithItems(ctx, site)
	if err != nil {
		return fmt.Errorf("fetch snapshot for %s: %w", site, err)
	}

	s.cfg.Store.Load(site, reg)
	metrics.ResyncsTotal.WithLabelValues(site, reason).Inc()
	metrics.RegistryItems.WithLabelValues(site).Set(float64(reg.TotalItems()))
	s.log.Debug("registry resynced",
		"site", site, "reason", reason, "items", reg.TotalItems())

	// A fresh snapshot makes any scheduled refresh redundant.
	s.mu.Lock()
	delete(s.pending, site)
	s.mu.Unlock()
	if s.cfg.Queue != nil {
		if err := s.cfg.Queue.Remove(ctx, site); err != nil {
			s.log.Warn("failed to clear queued refresh", "site", site, "error", err)
		}
	}
	return nil
}

// ScheduleRefresh queues an eventual refetch for a site. Used after a settled
// move so the next snapshot reconfirms the optimistic registry. Idempotent:
// re-scheduling keeps the earlier due time.
func (s *Scheduler) ScheduleRefresh(site string) {
	due := time.Now().Add(s.cfg.RefreshDelay)

	if s.cfg.Queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.cfg.Queue.PushRefresh(ctx, site, due)
		if err == nil {
			return
		}
		s.log.Warn("redis refresh queue unavailable, using in-process queue",
			"site", site, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.pending[site]; !ok || due.Before(existing) {
		s.pending[site] = due
	}
}

// Run processes scheduled refreshes until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.ProcessDue(ctx, time.Now())
		}
	}
}

// ProcessDue resyncs every site whose scheduled refresh is due at or before
// now. Exposed for deterministic tests; Run calls it on every tick.
func (s *Scheduler) ProcessDue(ctx context.Context, now time.Time) {
	for _, site := range s.popDue(ctx, now) {
		if s.cfg.Queue != nil {
			ok, err := s.cfg.Queue.AcquireLock(ctx, site, s.cfg.RefreshDelay)
			if err != nil {
				s.log.Warn("refresh lock failed", "site", site, "error", err)
			} else if !ok {
				continue // another instance is refreshing this site
			}
		}

		if err := s.resync(ctx, site, "scheduled"); err != nil {
			s.log.Warn("scheduled refresh failed, requeueing",
				"site", site, "error", err)
			s.ScheduleRefresh(site)
		}

		if s.cfg.Queue != nil {
			if err := s.cfg.Queue.ReleaseLock(ctx, site); err != nil {
				s.log.Warn("refresh unlock failed", "site", site, "error", err)
			}
		}
	}
}

func (s *Scheduler) popDue(ctx context.Context, now time.Time) []string {
	if s.cfg.Queue != nil {
		sites, err := s.cfg.Queue.PopDue(ctx, now)
		if err != nil {
			s.log.Warn("redis refresh queue unavailable", "error", err)
		} else {
			return sites
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var due []string
	for site, at := range s.pending {
		if !at.After(now) {
			due = append(due, site)
			delete(s.pending, site)
		}
	}
	return due
}
