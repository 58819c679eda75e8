package domain

// Item represents a single inventory unit.
type Item struct {
	SKU      string `json:"sku"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location"`
}
