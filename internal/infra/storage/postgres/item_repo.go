package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"relocator/internal/core/domain"
	"relocator/internal/infra/storage"
)

// ItemRepo implements storage.ItemRepository using PostgreSQL.
type ItemRepo struct {
	db *DB
}

// NewItemRepo creates a new PostgreSQL item repository.
func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// Get retrieves an item by SKU at a site.
func (r *ItemRepo) Get(ctx context.Context, site, sku string) (domain.Item, error) {
	var row struct {
		SKU      string `db:"sku"`
		Name     string `db:"name"`
		Location string `db:"location"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT sku, name, location FROM items WHERE site_id = $1 AND sku = $2`,
		site, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, storage.ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to get item: %w", err)
	}
	return domain.Item{SKU: row.SKU, Name: row.Name, Location: row.Location}, nil
}

// Put inserts or replaces an item.
func (r *ItemRepo) Put(ctx context.Context, site string, item domain.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (site_id, sku, name, location)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (site_id, sku)
		DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location`,
		site, item.SKU, item.Name, item.Location)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Move relocates an item to the named destination room, holding a row lock
// on the item so concurrent moves of the same SKU serialize.
func (r *ItemRepo) Move(ctx context.Context, site, sku, destRoom string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var location string
	err = tx.GetContext(ctx, &location,
		`SELECT location FROM items WHERE site_id = $1 AND sku = $2 FOR UPDATE`,
		site, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock item: %w", err)
	}

	var roomExists bool
	err = tx.GetContext(ctx, &roomExists,
		`SELECT EXISTS (SELECT 1 FROM rooms WHERE site_id = $1 AND name = $2)`,
		site, destRoom)
	if err != nil {
		return fmt.Errorf("failed to check room: %w", err)
	}
	if !roomExists {
		return storage.ErrRoomNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET location = $3 WHERE site_id = $1 AND sku = $2`,
		site, sku, destRoom)
	if err != nil {
		return fmt.Errorf("failed to move item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}
	return nil
}
