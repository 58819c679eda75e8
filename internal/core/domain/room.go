package domain

// SentinelRoom is the default name of the reserved room that holds items
// permanently out of scope for physical counting. It participates in
// membership accounting but is never a valid drag target.
const SentinelRoom = "never inventory"

// Room is a named bucket of items. Membership and count are the only
// semantically meaningful properties; item order carries no meaning.
type Room struct {
	Name      string `json:"name"`
	Items     []Item `json:"items"`
	ItemCount int    `json:"item_count"`
}

// Contains reports whether the room holds an item with the given SKU.
func (r *Room) Contains(sku string) bool {
	for _, it := range r.Items {
		if it.SKU == sku {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	items := make([]Item, len(r.Items))
	copy(items, r.Items)
	return &Room{
		Name:      r.Name,
		Items:     items,
		ItemCount: r.ItemCount,
	}
}
