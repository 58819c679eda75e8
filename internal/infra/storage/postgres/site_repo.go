package postgres

import (
	"context"
	"fmt"

	"relocator/internal/core/domain"
)

// SiteRepo implements storage.SiteRepository using PostgreSQL.
type SiteRepo struct {
	db *DB
}

// NewSiteRepo creates a new PostgreSQL site repository.
func NewSiteRepo(db *DB) *SiteRepo {
	return &SiteRepo{db: db}
}

// List retrieves all sites.
func (r *SiteRepo) List(ctx context.Context) ([]domain.Site, error) {
	var rows []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT id, name FROM sites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}

	sites := make([]domain.Site, 0, len(rows))
	for _, row := range rows {
		sites = append(sites, domain.Site{ID: row.ID, Name: row.Name})
	}
	return sites, nil
}

// Exists reports whether a site exists.
func (r *SiteRepo) Exists(ctx context.Context, site string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM sites WHERE id = $1)`, site)
	if err != nil {
		return false, fmt.Errorf("failed to check site: %w", err)
	}
	return exists, nil
}
