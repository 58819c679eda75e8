// Package projector computes speculative registries for in-flight moves.
//
// Project is a pure function: no I/O, no side effects, no mutation of its
// input. Applying it twice with the same arguments against its own output is
// a no-op the second time, because the moved item is already absent from the
// source room.
package projector

import (
	"relocator/internal/core/domain"
)

// Project returns the registry that results from moving the item identified
// by sku from sourceRoom to destRoom.
//
// The input registry is returned unchanged when the move is a no-op: same
// source and destination, unknown source room, or SKU not present in the
// source room (a stale event referencing an item already moved elsewhere
// must not corrupt state). Otherwise a new registry is returned in which only
// the two touched rooms are replaced; all other room values are shared with
// the input, so untouched rooms stay referentially stable for cheap equality
// checks upstream.
func Project(reg domain.Registry, sourceRoom, destRoom, sku string) domain.Registry {
	if sourceRoom == destRoom {
		return reg
	}

	source, ok := reg[sourceRoom]
	if !ok {
		return reg
	}
	dest, ok := reg[destRoom]
	if !ok {
		return reg
	}

	idx := -1
	for i, it := range source.Items {
		if it.SKU == sku {
			idx = i
			break
		}
	}
	if idx < 0 {
		return reg
	}

	moved := source.Items[idx]
	moved.Location = destRoom

	nextSource := &domain.Room{
		Name:      source.Name,
		Items:     make([]domain.Item, 0, len(source.Items)-1),
		ItemCount: source.ItemCount - 1,
	}
	nextSource.Items = append(nextSource.Items, source.Items[:idx]...)
	nextSource.Items = append(nextSource.Items, source.Items[idx+1:]...)

	nextDest := &domain.Room{
		Name:      dest.Name,
		Items:     make([]domain.Item, 0, len(dest.Items)+1),
		ItemCount: dest.ItemCount + 1,
	}
	nextDest.Items = append(nextDest.Items, dest.Items...)
	nextDest.Items = append(nextDest.Items, moved)

	next := make(domain.Registry, len(reg))
	for name, room := range reg {
		next[name] = room
	}
	next[sourceRoom] = nextSource
	next[destRoom] = nextDest

	return next
}
