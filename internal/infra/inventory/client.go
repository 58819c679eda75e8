// Package inventory is the HTTP client for the inventory backend: full
// snapshot fetches, the authoritative move call, and site listing.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"relocator/internal/core/domain"
)

// Config holds client settings.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to the inventory backend over JSON/HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new inventory client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ListSites returns all site identifiers.
func (c *Client) ListSites(ctx context.Context) ([]domain.Site, error) {
	var payload struct {
		Sites []domain.Site `json:"sites"`
	}
	if err := c.get(ctx, "/api/sites", &payload); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return payload.Sites, nil
}

// ListRoomsWithItems fetches the full registry snapshot for a site. Used for
// the initial load and every resync.
func (c *Client) ListRoomsWithItems(ctx context.Context, site string) (domain.Registry, error) {
	var payload struct {
		Rooms []*domain.Room `json:"rooms"`
	}
	path := fmt.Sprintf("/api/sites/%s/rooms", url.PathEscape(site))
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("list rooms for %s: %w", site, err)
	}

	reg := make(domain.Registry, len(payload.Rooms))
	for _, room := range payload.Rooms {
		if room.Items == nil {
			room.Items = []domain.Item{}
		}
		reg[room.Name] = room
	}
	return reg, nil
}

// MoveItem issues the sole authoritative mutation. The failure reason is
// opaque to the engine: any non-2xx response is an error.
func (c *Client) MoveItem(ctx context.Context, site, sku, destRoom string) error {
	body, err := json.Marshal(map[string]string{
		"sku":         sku,
		"destination": destRoom,
		"request_id":  uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("marshal move request: %w", err)
	}

	path := fmt.Sprintf("/api/sites/%s/moves", url.PathEscape(site))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("move item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("move rejected: %s", readAPIError(resp))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, readAPIError(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// readAPIError extracts the error message from a failed response, falling
// back to the raw body.
func readAPIError(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return fmt.Sprintf("http %d", resp.StatusCode)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Sprintf("http %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Sprintf("http %d: %s", resp.StatusCode, string(body))
}
