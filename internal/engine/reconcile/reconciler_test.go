package reconcile

import (
	"context"
	"errors"
	"testing"

	"relocator/internal/core/domain"
	"relocator/internal/core/registry"
)

func testRegistry() domain.Registry {
	return domain.Registry{
		"Kitchen": {
			Name:      "Kitchen",
			Items:     []domain.Item{{SKU: "A", Location: "Kitchen"}},
			ItemCount: 1,
		},
		"Storage": {
			Name:      "Storage",
			Items:     []domain.Item{},
			ItemCount: 0,
		},
	}
}

type mockMover struct {
	calls int
	err   error
	// hook runs inside MoveItem, before it returns. Used to simulate a
	// registry reload racing the in-flight call.
	hook func()
}

func (m *mockMover) MoveItem(_ context.Context, site, sku, destRoom string) error {
	m.calls++
	if m.hook != nil {
		m.hook()
	}
	return m.err
}

type mockResyncer struct {
	resyncs   int
	scheduled []string
	err       error
}

func (m *mockResyncer) Resync(_ context.Context, site string) error {
	m.resyncs++
	return m.err
}

func (m *mockResyncer) ScheduleRefresh(site string) {
	m.scheduled = append(m.scheduled, site)
}

func TestReconciler_Commit_Settled(t *testing.T) {
	store := registry.NewStore("")
	store.Load("site-1", testRegistry())
	mover := &mockMover{}
	sync := &mockResyncer{}
	r := New(mover, store, sync)

	outcome, err := r.Commit(context.Background(), "site-1", "A", "Storage", store.Generation())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if outcome != OutcomeSettled {
		t.Errorf("expected settled, got %s", outcome)
	}
	if sync.resyncs != 0 {
		t.Error("settled commit must not resync")
	}
	if len(sync.scheduled) != 1 || sync.scheduled[0] != "site-1" {
		t.Errorf("expected one scheduled refresh for site-1, got %v", sync.scheduled)
	}
}

func TestReconciler_Commit_Rejected(t *testing.T) {
	store := registry.NewStore("")
	store.Load("site-1", testRegistry())
	rejected := errors.New("destination room is locked")
	mover := &mockMover{err: rejected}
	sync := &mockResyncer{}
	r := New(mover, store, sync)

	outcome, err := r.Commit(context.Background(), "site-1", "A", "Storage", store.Generation())
	if outcome != OutcomeReverted {
		t.Errorf("expected reverted, got %s", outcome)
	}
	if !errors.Is(err, rejected) {
		t.Errorf("expected rejection error preserved, got %v", err)
	}
	if sync.resyncs != 1 {
		t.Errorf("expected one resync, got %d", sync.resyncs)
	}
	if len(sync.scheduled) != 0 {
		t.Error("rejected commit must not schedule a refresh")
	}
}

func TestReconciler_Commit_ResyncFailure(t *testing.T) {
	store := registry.NewStore("")
	store.Load("site-1", testRegistry())
	unreachable := errors.New("backend unreachable")
	mover := &mockMover{err: errors.New("rejected")}
	sync := &mockResyncer{err: unreachable}
	r := New(mover, store, sync)

	outcome, err := r.Commit(context.Background(), "site-1", "A", "Storage", store.Generation())
	if outcome != OutcomeReverted {
		t.Errorf("expected reverted, got %s", outcome)
	}
	if !errors.Is(err, unreachable) {
		t.Errorf("expected resync error surfaced, got %v", err)
	}
}

func TestReconciler_Commit_StaleResponseDiscarded(t *testing.T) {
	store := registry.NewStore("")
	store.Load("site-1", testRegistry())
	gen := store.Generation()

	sync := &mockResyncer{}
	mover := &mockMover{
		// The registry reloads while the move call is in flight.
		hook: func() { store.Load("site-1", testRegistry()) },
	}
	r := New(mover, store, sync)

	outcome, err := r.Commit(context.Background(), "site-1", "A", "Storage", gen)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if outcome != OutcomeStale {
		t.Errorf("expected stale, got %s", outcome)
	}
	if sync.resyncs != 0 || len(sync.scheduled) != 0 {
		t.Error("stale response must not touch sync state")
	}
}

func TestReconciler_Commit_StaleWinsOverError(t *testing.T) {
	// A failed move whose response is already superseded is discarded, not
	// reverted. The reload that superseded it restored the truth.
	store := registry.NewStore("")
	store.Load("site-1", testRegistry())
	gen := store.Generation()

	sync := &mockResyncer{}
	mover := &mockMover{
		err:  errors.New("rejected"),
		hook: func() { store.Load("site-1", testRegistry()) },
	}
	r := New(mover, store, sync)

	outcome, err := r.Commit(context.Background(), "site-1", "A", "Storage", gen)
	if err != nil {
		t.Fatalf("expected stale error to be swallowed, got %v", err)
	}
	if outcome != OutcomeStale {
		t.Errorf("expected stale, got %s", outcome)
	}
	if sync.resyncs != 0 {
		t.Error("stale rejection must not resync")
	}
}
