package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"relocator/internal/core/domain"
	"relocator/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.MemoryStorage) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewMemoryStorage()
	store.AddSite(domain.Site{ID: "warehouse-1", Name: "Warehouse One"})

	rooms := memory.NewRoomRepo(store)
	items := memory.NewItemRepo(store)
	if err := rooms.Create(ctx, "warehouse-1", "Kitchen"); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := rooms.Create(ctx, "warehouse-1", "Storage"); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := items.Put(ctx, "warehouse-1", domain.Item{SKU: "A", Name: "Kettle", Location: "Kitchen"}); err != nil {
		t.Fatalf("put item: %v", err)
	}

	return New(Config{
		Sites: memory.NewSiteRepo(store),
		Rooms: rooms,
		Items: items,
	}), store
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_ListSites(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/sites", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Sites []domain.Site `json:"sites"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(payload.Sites) != 1 || payload.Sites[0].ID != "warehouse-1" {
		t.Errorf("unexpected sites: %+v", payload.Sites)
	}
}

func TestServer_ListRooms(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/sites/warehouse-1/rooms", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Rooms []*domain.Room `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	// Kitchen, Storage, and the sentinel created with the site.
	if len(payload.Rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(payload.Rooms))
	}
	for _, room := range payload.Rooms {
		if room.Name == "Kitchen" && (room.ItemCount != 1 || !room.Contains("A")) {
			t.Errorf("kitchen should hold A: %+v", room)
		}
	}
}

func TestServer_ListRooms_UnknownSite(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/sites/nope/rooms", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_Move(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"sku":         "A",
		"destination": "Storage",
		"request_id":  "req-1",
	})
	rec := doRequest(t, srv, http.MethodPost, "/api/sites/warehouse-1/moves", body)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// The snapshot now reports the item in its new room.
	rec = doRequest(t, srv, http.MethodGet, "/api/sites/warehouse-1/rooms", nil)
	var payload struct {
		Rooms []*domain.Room `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	for _, room := range payload.Rooms {
		switch room.Name {
		case "Storage":
			if !room.Contains("A") {
				t.Error("expected A in Storage")
			}
		case "Kitchen":
			if room.Contains("A") {
				t.Error("expected A gone from Kitchen")
			}
		}
	}
}

func TestServer_Move_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
		body map[string]string
		want int
	}{
		{
			name: "missing fields",
			path: "/api/sites/warehouse-1/moves",
			body: map[string]string{"sku": "A"},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown site",
			path: "/api/sites/nope/moves",
			body: map[string]string{"sku": "A", "destination": "Storage"},
			want: http.StatusNotFound,
		},
		{
			name: "unknown item",
			path: "/api/sites/warehouse-1/moves",
			body: map[string]string{"sku": "ZZ", "destination": "Storage"},
			want: http.StatusNotFound,
		},
		{
			name: "unknown room",
			path: "/api/sites/warehouse-1/moves",
			body: map[string]string{"sku": "A", "destination": "Garage"},
			want: http.StatusConflict,
		},
		{
			name: "sentinel destination",
			path: "/api/sites/warehouse-1/moves",
			body: map[string]string{"sku": "A", "destination": domain.SentinelRoom},
			want: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			rec := doRequest(t, srv, http.MethodPost, tt.path, body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServer_Move_BadBody(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/sites/warehouse-1/moves", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
