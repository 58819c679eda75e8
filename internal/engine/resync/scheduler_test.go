package resync

import (
	"context"
	"errors"
	"testing"
	"time"

	"relocator/internal/core/domain"
	"relocator/internal/core/registry"
)

type fakeFetcher struct {
	calls int
	reg   domain.Registry
	err   error
}

func (f *fakeFetcher) ListRoomsWithItems(_ context.Context, site string) (domain.Registry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reg, nil
}

func snapshot() domain.Registry {
	return domain.Registry{
		"Kitchen": {
			Name:      "Kitchen",
			Items:     []domain.Item{{SKU: "A", Location: "Kitchen"}},
			ItemCount: 1,
		},
	}
}

func TestScheduler_Resync_LoadsAndBumpsGeneration(t *testing.T) {
	store := registry.NewStore("")
	fetcher := &fakeFetcher{reg: snapshot()}
	s := New(Config{Fetcher: fetcher, Store: store})

	if err := s.Resync(context.Background(), "site-1"); err != nil {
		t.Fatalf("Resync failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected one fetch, got %d", fetcher.calls)
	}
	if store.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", store.Generation())
	}
	if store.Site() != "site-1" {
		t.Errorf("expected site-1, got %s", store.Site())
	}
	if !store.Snapshot()["Kitchen"].Contains("A") {
		t.Error("expected snapshot loaded into the store")
	}
}

func TestScheduler_Resync_FetchFailureLeavesStore(t *testing.T) {
	store := registry.NewStore("")
	store.Load("site-1", snapshot())
	fetcher := &fakeFetcher{err: errors.New("backend down")}
	s := New(Config{Fetcher: fetcher, Store: store})

	if err := s.Resync(context.Background(), "site-1"); err == nil {
		t.Fatal("expected fetch error")
	}
	if store.Generation() != 1 {
		t.Error("failed fetch must not touch the store")
	}
}

func TestScheduler_ScheduledRefreshFiresWhenDue(t *testing.T) {
	store := registry.NewStore("")
	fetcher := &fakeFetcher{reg: snapshot()}
	s := New(Config{Fetcher: fetcher, Store: store, RefreshDelay: time.Minute})

	s.ScheduleRefresh("site-1")
	now := time.Now()

	s.ProcessDue(context.Background(), now)
	if fetcher.calls != 0 {
		t.Fatal("refresh fired before its due time")
	}

	s.ProcessDue(context.Background(), now.Add(2*time.Minute))
	if fetcher.calls != 1 {
		t.Fatalf("expected one fetch after due time, got %d", fetcher.calls)
	}

	// The queue entry is consumed.
	s.ProcessDue(context.Background(), now.Add(3*time.Minute))
	if fetcher.calls != 1 {
		t.Errorf("expected refresh consumed, got %d fetches", fetcher.calls)
	}
}

func TestScheduler_ScheduleRefresh_KeepsEarlierDue(t *testing.T) {
	store := registry.NewStore("")
	fetcher := &fakeFetcher{reg: snapshot()}
	s := New(Config{Fetcher: fetcher, Store: store, RefreshDelay: time.Minute})

	s.ScheduleRefresh("site-1")
	first := time.Now().Add(time.Minute)
	s.ScheduleRefresh("site-1")
	s.ScheduleRefresh("site-1")

	// Re-scheduling must not push the due time out past the first request.
	s.ProcessDue(context.Background(), first.Add(time.Second))
	if fetcher.calls != 1 {
		t.Errorf("expected one fetch, got %d", fetcher.calls)
	}
}

func TestScheduler_ResyncClearsPendingRefresh(t *testing.T) {
	store := registry.NewStore("")
	fetcher := &fakeFetcher{reg: snapshot()}
	s := New(Config{Fetcher: fetcher, Store: store, RefreshDelay: time.Minute})

	s.ScheduleRefresh("site-1")
	if err := s.Resync(context.Background(), "site-1"); err != nil {
		t.Fatalf("Resync failed: %v", err)
	}
	fetched := fetcher.calls

	// The forced resync made the scheduled one redundant.
	s.ProcessDue(context.Background(), time.Now().Add(time.Hour))
	if fetcher.calls != fetched {
		t.Errorf("expected no further fetches, got %d", fetcher.calls-fetched)
	}
}

func TestScheduler_FailedScheduledRefreshRequeues(t *testing.T) {
	store := registry.NewStore("")
	fetcher := &fakeFetcher{err: errors.New("backend down")}
	s := New(Config{Fetcher: fetcher, Store: store, RefreshDelay: time.Minute})

	s.ScheduleRefresh("site-1")
	s.ProcessDue(context.Background(), time.Now().Add(2*time.Minute))
	if fetcher.calls != 1 {
		t.Fatalf("expected one failed fetch, got %d", fetcher.calls)
	}

	// The failure requeued the refresh; once the backend recovers it lands.
	fetcher.err = nil
	fetcher.reg = snapshot()
	s.ProcessDue(context.Background(), time.Now().Add(5*time.Minute))
	if fetcher.calls != 2 {
		t.Fatalf("expected retry fetch, got %d", fetcher.calls)
	}
	if store.Site() != "site-1" {
		t.Error("expected retry to load the store")
	}
}
