package postgres

import (
	"context"
	"fmt"

	"relocator/internal/core/domain"
	"relocator/internal/infra/storage"
)

// RoomRepo implements storage.RoomRepository using PostgreSQL.
type RoomRepo struct {
	db *DB
}

// NewRoomRepo creates a new PostgreSQL room repository.
func NewRoomRepo(db *DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// ListBySite retrieves all rooms at a site with their member items. Counts
// are derived from the member lists, so a snapshot can never disagree with
// itself.
func (r *RoomRepo) ListBySite(ctx context.Context, site string) ([]*domain.Room, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM sites WHERE id = $1)`, site)
	if err != nil {
		return nil, fmt.Errorf("failed to check site: %w", err)
	}
	if !exists {
		return nil, storage.ErrSiteNotFound
	}

	var roomRows []struct {
		Name string `db:"name"`
	}
	err = r.db.SelectContext(ctx, &roomRows,
		`SELECT name FROM rooms WHERE site_id = $1 ORDER BY name`, site)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	bySite := make(map[string]*domain.Room, len(roomRows))
	rooms := make([]*domain.Room, 0, len(roomRows))
	for _, row := range roomRows {
		room := &domain.Room{Name: row.Name, Items: []domain.Item{}}
		bySite[row.Name] = room
		rooms = append(rooms, room)
	}

	var itemRows []struct {
		SKU      string `db:"sku"`
		Name     string `db:"name"`
		Location string `db:"location"`
	}
	err = r.db.SelectContext(ctx, &itemRows,
		`SELECT sku, name, location FROM items WHERE site_id = $1 ORDER BY sku`, site)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	for _, row := range itemRows {
		room, ok := bySite[row.Location]
		if !ok {
			return nil, fmt.Errorf("item %s in unknown room %s", row.SKU, row.Location)
		}
		room.Items = append(room.Items, domain.Item{
			SKU:      row.SKU,
			Name:     row.Name,
			Location: row.Location,
		})
		room.ItemCount++
	}

	return rooms, nil
}

// Create creates an empty room at a site. Creating an existing room is a
// no-op.
func (r *RoomRepo) Create(ctx context.Context, site, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (site_id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		site, name)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}
