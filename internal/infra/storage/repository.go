package storage

import (
	"context"
	"errors"

	"relocator/internal/core/domain"
)

var (
	// ErrSiteNotFound is returned when a site doesn't exist.
	ErrSiteNotFound = errors.New("site not found")

	// ErrItemNotFound is returned when a SKU doesn't exist at a site.
	ErrItemNotFound = errors.New("item not found")

	// ErrRoomNotFound is returned when a destination room doesn't exist at a
	// site.
	ErrRoomNotFound = errors.New("room not found")
)

// SiteRepository handles site storage operations
type SiteRepository interface {
	// List retrieves all sites
	List(ctx context.Context) ([]domain.Site, error)

	// Exists reports whether a site exists
	Exists(ctx context.Context, site string) (bool, error)
}

// RoomRepository handles room storage operations
type RoomRepository interface {
	// ListBySite retrieves all rooms at a site with their member items and
	// counts populated
	ListBySite(ctx context.Context, site string) ([]*domain.Room, error)

	// Create creates an empty room at a site (out-of-band operation, not
	// part of the relocation engine)
	Create(ctx context.Context, site, name string) error
}

// ItemRepository handles item storage operations
type ItemRepository interface {
	// Get retrieves an item by SKU at a site
	Get(ctx context.Context, site, sku string) (domain.Item, error)

	// Put inserts or replaces an item (bulk load / seeding)
	Put(ctx context.Context, site string, item domain.Item) error

	// Move relocates an item to the named destination room. Fails with
	// ErrItemNotFound or ErrRoomNotFound when either side is missing.
	Move(ctx context.Context, site, sku, destRoom string) error
}
