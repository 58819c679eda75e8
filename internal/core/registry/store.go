// Package registry holds the in-memory source of truth for which items live
// in which room.
//
// The store never mutates a registry in place. Load and Apply replace the
// whole registry value in a single assignment, so a renderer reading a
// snapshot can never observe a half-updated state. Load additionally bumps a
// generation counter, which fences in-flight persistence responses against
// resyncs that superseded them.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"relocator/internal/core/domain"
)

var (
	// ErrItemNotFound is returned when a SKU is not present in any room.
	ErrItemNotFound = errors.New("item not found")

	// ErrUnknownTarget is returned when a drop target maps to neither a room
	// nor an item.
	ErrUnknownTarget = errors.New("unknown drop target")

	// ErrSentinelTarget is returned when a drop target resolves to the
	// reserved sentinel room.
	ErrSentinelTarget = errors.New("sentinel room is not a valid drop target")
)

// Store is the single mutable shared state of the engine.
type Store struct {
	mu         sync.RWMutex
	site       string
	reg        domain.Registry
	sentinel   string
	generation uint64
}

// NewStore creates an empty store. The sentinel name identifies the reserved
// room excluded from drag targets; empty means the default.
func NewStore(sentinel string) *Store {
	if sentinel == "" {
		sentinel = domain.SentinelRoom
	}
	return &Store{
		reg:      domain.Registry{},
		sentinel: sentinel,
	}
}

// Load replaces the entire registry atomically and advances the generation.
// Used after the initial fetch and after every resync.
func (s *Store) Load(site string, reg domain.Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site = site
	s.reg = reg
	s.generation++
}

// ApplyIf replaces the registry with a speculative preview, but only while
// the load generation still matches the one the preview was computed
// against. The check and the replacement happen under one write lock, so a
// concurrent Load can never be overwritten by a preview it superseded. The
// generation is left alone: previews overwrite each other freely.
//
// A false return means a Load landed first; the caller must discard the
// preview and treat its drag as superseded.
func (s *Store) ApplyIf(generation uint64, reg domain.Registry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return false
	}
	s.reg = reg
	return true
}

// Snapshot returns the current registry value. Callers must treat it as
// read-only; the store never mutates a registry it has handed out.
func (s *Store) Snapshot() domain.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg
}

// Site returns the site the current registry was loaded for.
func (s *Store) Site() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

// Generation returns the current load generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Sentinel returns the name of the reserved sentinel room.
func (s *Store) Sentinel() string {
	return s.sentinel
}

// FindItem scans all rooms for the given SKU and returns the item along with
// the name of the room holding it.
func (s *Store) FindItem(sku string) (domain.Item, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, room, ok := s.reg.FindItem(sku)
	if !ok {
		return domain.Item{}, "", fmt.Errorf("%w: %s", ErrItemNotFound, sku)
	}
	return item, room, nil
}

// ResolveTarget maps a drop target identifier to a destination room name. A
// target naming a room resolves to that room; a target naming an item
// resolves to the room currently holding it. The sentinel room never
// resolves.
func (s *Store) ResolveTarget(target string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if target == s.sentinel {
		return "", ErrSentinelTarget
	}
	if _, ok := s.reg[target]; ok {
		return target, nil
	}
	if _, room, ok := s.reg.FindItem(target); ok {
		if room == s.sentinel {
			return "", ErrSentinelTarget
		}
		return room, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTarget, target)
}

// DisplayRooms returns the names of all rooms except the sentinel, sorted.
// This is what the presentation layer renders by default.
func (s *Store) DisplayRooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.reg.RoomNames()
	out := names[:0]
	for _, name := range names {
		if name != s.sentinel {
			out = append(out, name)
		}
	}
	return out
}
