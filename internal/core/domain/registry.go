package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrCountMismatch is returned when a room's item_count disagrees with
	// its member list.
	ErrCountMismatch = errors.New("item count does not match member list")

	// ErrDuplicateMembership is returned when an item appears in more than
	// one room.
	ErrDuplicateMembership = errors.New("item present in multiple rooms")

	// ErrLocationMismatch is returned when an item's location field does not
	// name the room containing it.
	ErrLocationMismatch = errors.New("item location does not match containing room")
)

// Registry maps room name -> room. It is treated as an immutable value: every
// mutation produces a new Registry, so readers holding an old one never
// observe a half-updated state.
type Registry map[string]*Room

// TotalItems returns the number of items across all rooms, counted from the
// member lists.
func (r Registry) TotalItems() int {
	total := 0
	for _, room := range r {
		total += len(room.Items)
	}
	return total
}

// FindItem scans all rooms for the given SKU. Linear in total item count,
// which is acceptable at inventory scale.
func (r Registry) FindItem(sku string) (Item, string, bool) {
	for name, room := range r {
		for _, it := range room.Items {
			if it.SKU == sku {
				return it, name, true
			}
		}
	}
	return Item{}, "", false
}

// Validate checks the registry invariants: every room's count equals its
// member list length, every item appears in exactly one room, and every
// item's location names the room holding it.
func (r Registry) Validate() error {
	seen := make(map[string]string)
	for name, room := range r {
		if room.ItemCount != len(room.Items) {
			return fmt.Errorf("%w: room %q has count %d but %d members",
				ErrCountMismatch, name, room.ItemCount, len(room.Items))
		}
		for _, it := range room.Items {
			if prev, ok := seen[it.SKU]; ok {
				return fmt.Errorf("%w: %q in both %q and %q",
					ErrDuplicateMembership, it.SKU, prev, name)
			}
			seen[it.SKU] = name
			if it.Location != name {
				return fmt.Errorf("%w: %q located at %q but held by %q",
					ErrLocationMismatch, it.SKU, it.Location, name)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the registry.
func (r Registry) Clone() Registry {
	next := make(Registry, len(r))
	for name, room := range r {
		next[name] = room.Clone()
	}
	return next
}

// RoomNames returns all room names in sorted order.
func (r Registry) RoomNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
