package domain

// Site identifies one physical site. Each site owns an independent registry
// of rooms and items.
type Site struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
