package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"relocator/internal/core/domain"
	"relocator/internal/infra/storage"
)

// MemoryStorage backs the inventory repositories with in-process maps. Used
// in tests and in dev mode when no database is configured.
type MemoryStorage struct {
	sites map[string]domain.Site
	rooms map[string]map[string]struct{}    // site -> room names
	items map[string]map[string]domain.Item // site -> sku -> item
	mu    sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sites: make(map[string]domain.Site),
		rooms: make(map[string]map[string]struct{}),
		items: make(map[string]map[string]domain.Item),
	}
}

// AddSite registers a site, creating its sentinel room.
func (s *MemoryStorage) AddSite(site domain.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites[site.ID] = site
	if s.rooms[site.ID] == nil {
		s.rooms[site.ID] = map[string]struct{}{domain.SentinelRoom: {}}
		s.items[site.ID] = make(map[string]domain.Item)
	}
}

// -----------------------------------------------------------------------------
// Site Repository
// -----------------------------------------------------------------------------

type SiteRepo struct {
	store *MemoryStorage
}

func NewSiteRepo(store *MemoryStorage) *SiteRepo {
	return &SiteRepo{store: store}
}

func (r *SiteRepo) List(ctx context.Context) ([]domain.Site, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sites := make([]domain.Site, 0, len(r.store.sites))
	for _, s := range r.store.sites {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })
	return sites, nil
}

func (r *SiteRepo) Exists(ctx context.Context, site string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.sites[site]
	return ok, nil
}

// -----------------------------------------------------------------------------
// Room Repository
// -----------------------------------------------------------------------------

type RoomRepo struct {
	store *MemoryStorage
}

func NewRoomRepo(store *MemoryStorage) *RoomRepo {
	return &RoomRepo{store: store}
}

func (r *RoomRepo) ListBySite(ctx context.Context, site string) ([]*domain.Room, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	names, ok := r.store.rooms[site]
	if !ok {
		return nil, storage.ErrSiteNotFound
	}

	bySite := make(map[string]*domain.Room, len(names))
	for name := range names {
		bySite[name] = &domain.Room{Name: name, Items: []domain.Item{}}
	}
	for _, item := range r.store.items[site] {
		room, ok := bySite[item.Location]
		if !ok {
			return nil, fmt.Errorf("item %s in unknown room %s", item.SKU, item.Location)
		}
		room.Items = append(room.Items, item)
		room.ItemCount++
	}

	rooms := make([]*domain.Room, 0, len(bySite))
	for _, room := range bySite {
		sort.Slice(room.Items, func(i, j int) bool { return room.Items[i].SKU < room.Items[j].SKU })
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (r *RoomRepo) Create(ctx context.Context, site, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rooms, ok := r.store.rooms[site]
	if !ok {
		return storage.ErrSiteNotFound
	}
	rooms[name] = struct{}{}
	return nil
}

// -----------------------------------------------------------------------------
// Item Repository
// -----------------------------------------------------------------------------

type ItemRepo struct {
	store *MemoryStorage
}

func NewItemRepo(store *MemoryStorage) *ItemRepo {
	return &ItemRepo{store: store}
}

func (r *ItemRepo) Get(ctx context.Context, site, sku string) (domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	items, ok := r.store.items[site]
	if !ok {
		return domain.Item{}, storage.ErrSiteNotFound
	}
	item, ok := items[sku]
	if !ok {
		return domain.Item{}, storage.ErrItemNotFound
	}
	return item, nil
}

func (r *ItemRepo) Put(ctx context.Context, site string, item domain.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	items, ok := r.store.items[site]
	if !ok {
		return storage.ErrSiteNotFound
	}
	if _, ok := r.store.rooms[site][item.Location]; !ok {
		return storage.ErrRoomNotFound
	}
	items[item.SKU] = item
	return nil
}

func (r *ItemRepo) Move(ctx context.Context, site, sku, destRoom string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items, ok := r.store.items[site]
	if !ok {
		return storage.ErrSiteNotFound
	}
	item, ok := items[sku]
	if !ok {
		return storage.ErrItemNotFound
	}
	if _, ok := r.store.rooms[site][destRoom]; !ok {
		return storage.ErrRoomNotFound
	}

	item.Location = destRoom
	items[sku] = item
	return nil
}
