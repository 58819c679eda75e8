package registry

import (
	"errors"
	"testing"

	"relocator/internal/core/domain"
)

func testRegistry() domain.Registry {
	return domain.Registry{
		"Kitchen": {
			Name: "Kitchen",
			Items: []domain.Item{
				{SKU: "A", Location: "Kitchen"},
				{SKU: "B", Location: "Kitchen"},
			},
			ItemCount: 2,
		},
		"Storage": {
			Name: "Storage",
			Items: []domain.Item{
				{SKU: "C", Location: "Storage"},
			},
			ItemCount: 1,
		},
		domain.SentinelRoom: {
			Name: domain.SentinelRoom,
			Items: []domain.Item{
				{SKU: "X", Location: domain.SentinelRoom},
			},
			ItemCount: 1,
		},
	}
}

func TestStore_Load_BumpsGeneration(t *testing.T) {
	store := NewStore("")

	if gen := store.Generation(); gen != 0 {
		t.Fatalf("expected generation 0, got %d", gen)
	}

	store.Load("site-1", testRegistry())
	if gen := store.Generation(); gen != 1 {
		t.Errorf("expected generation 1 after load, got %d", gen)
	}
	if store.Site() != "site-1" {
		t.Errorf("expected site-1, got %s", store.Site())
	}

	store.Load("site-1", testRegistry())
	if gen := store.Generation(); gen != 2 {
		t.Errorf("expected generation 2 after reload, got %d", gen)
	}
}

func TestStore_ApplyIf_KeepsGeneration(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())
	gen := store.Generation()

	preview := store.Snapshot().Clone()
	if !store.ApplyIf(gen, preview) {
		t.Fatal("expected preview applied at matching generation")
	}

	if store.Generation() != gen {
		t.Error("ApplyIf must not advance the generation")
	}
}

func TestStore_ApplyIf_RejectsSupersededPreview(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())
	gen := store.Generation()

	stale := store.Snapshot().Clone()
	delete(stale, "Storage")

	// A reload lands before the preview is written back.
	store.Load("site-1", testRegistry())

	if store.ApplyIf(gen, stale) {
		t.Fatal("preview computed against an old generation must be rejected")
	}
	if _, ok := store.Snapshot()["Storage"]; !ok {
		t.Error("rejected preview must leave the loaded registry untouched")
	}
}

func TestStore_FindItem(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())

	item, room, err := store.FindItem("B")
	if err != nil {
		t.Fatalf("FindItem failed: %v", err)
	}
	if room != "Kitchen" || item.SKU != "B" {
		t.Errorf("expected B in Kitchen, got %s in %s", item.SKU, room)
	}

	_, _, err = store.FindItem("missing")
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestStore_ResolveTarget_Room(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())

	room, err := store.ResolveTarget("Storage")
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if room != "Storage" {
		t.Errorf("expected Storage, got %s", room)
	}
}

func TestStore_ResolveTarget_Item(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())

	// Target is item C, which lives in Storage.
	room, err := store.ResolveTarget("C")
	if err != nil {
		t.Fatalf("ResolveTarget failed: %v", err)
	}
	if room != "Storage" {
		t.Errorf("expected Storage, got %s", room)
	}
}

func TestStore_ResolveTarget_Sentinel(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())

	if _, err := store.ResolveTarget(domain.SentinelRoom); !errors.Is(err, ErrSentinelTarget) {
		t.Errorf("expected ErrSentinelTarget for room target, got %v", err)
	}

	// Item X lives in the sentinel room; resolving through it must fail too.
	if _, err := store.ResolveTarget("X"); !errors.Is(err, ErrSentinelTarget) {
		t.Errorf("expected ErrSentinelTarget for item target, got %v", err)
	}
}

func TestStore_ResolveTarget_Unknown(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())

	if _, err := store.ResolveTarget("Garage"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestStore_DisplayRooms_ExcludesSentinel(t *testing.T) {
	store := NewStore("")
	store.Load("site-1", testRegistry())

	rooms := store.DisplayRooms()
	if len(rooms) != 2 {
		t.Fatalf("expected 2 display rooms, got %d", len(rooms))
	}
	for _, name := range rooms {
		if name == domain.SentinelRoom {
			t.Error("sentinel room must not be displayed")
		}
	}
}
