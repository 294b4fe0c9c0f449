package resources

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"lapwatch/internal/logfields"

	"fyne.io/fyne/v2"
)

// CacheName identifies the current asset cache version.
const CacheName = "lapwatch-cache-v1"

// Asset names.
const (
	IconApp     = "icon.svg"
	IconRunning = "icon-running.svg"
	IconPaused  = "icon-paused.svg"
)

// Assets is the list precached by Install.
var Assets = []string{IconApp, IconRunning, IconPaused}

// Storage holds named caches so that an old cache version can be dropped
// once a newer one is active.
type Storage struct {
	mu     sync.RWMutex
	caches map[string]map[string]fyne.Resource
}

// NewStorage returns empty cache storage.
func NewStorage() *Storage {
	return &Storage{caches: map[string]map[string]fyne.Resource{}}
}

// Keys lists the cache names present, sorted.
func (storage *Storage) Keys() []string {
	storage.mu.RLock()
	defer storage.mu.RUnlock()
	keys := make([]string, 0, len(storage.caches))
	for key := range storage.caches {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Activate deletes every cache not named active and returns the deleted names.
func (storage *Storage) Activate(active string) []string {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	var dropped []string
	for key := range storage.caches {
		if key != active {
			delete(storage.caches, key)
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)
	return dropped
}

func (storage *Storage) match(cacheName, asset string) (fyne.Resource, bool) {
	storage.mu.RLock()
	defer storage.mu.RUnlock()
	resource, ok := storage.caches[cacheName][asset]
	return resource, ok
}

func (storage *Storage) put(cacheName string, resources ...fyne.Resource) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	entries, ok := storage.caches[cacheName]
	if !ok {
		entries = map[string]fyne.Resource{}
		storage.caches[cacheName] = entries
	}
	for _, resource := range resources {
		entries[resource.Name()] = resource
	}
}

// Cache serves fyne resources from a named cache, falling through to the
// fetchers on a miss and to the root asset when every fetcher fails.
type Cache struct {
	storage  *Storage
	name     string
	assets   []string
	root     string
	fetchers []Fetcher
}

// NewCache creates a cache over storage. A nil storage gets a private one.
func NewCache(storage *Storage, name string, assets []string, root string, fetchers ...Fetcher) *Cache {
	if storage == nil {
		storage = NewStorage()
	}
	return &Cache{
		storage:  storage,
		name:     name,
		assets:   append([]string(nil), assets...),
		root:     root,
		fetchers: fetchers,
	}
}

// NewDefaultCache serves the app icons, preferring files in overrideDir when set.
func NewDefaultCache(overrideDir string) *Cache {
	var fetchers []Fetcher
	if overrideDir != "" {
		fetchers = append(fetchers, DirFetcher(overrideDir))
	}
	fetchers = append(fetchers, EmbeddedFetcher())
	return NewCache(NewStorage(), CacheName, Assets, IconApp, fetchers...)
}

// Name returns the cache version name.
func (cache *Cache) Name() string {
	return cache.name
}

// Install precaches every listed asset. Nothing is stored when any asset is missing.
func (cache *Cache) Install() error {
	resources := make([]fyne.Resource, 0, len(cache.assets))
	for _, asset := range cache.assets {
		data, err := fetchFirst(cache.fetchers, asset)
		if err != nil {
			return fmt.Errorf("install %s: %w", cache.name, err)
		}
		resources = append(resources, fyne.NewStaticResource(asset, data))
	}
	cache.storage.put(cache.name, resources...)
	return nil
}

// Activate makes this cache the only one kept in storage.
func (cache *Cache) Activate() []string {
	dropped := cache.storage.Activate(cache.name)
	for _, name := range dropped {
		slog.Debug("Dropped stale asset cache", logfields.Store(name))
	}
	return dropped
}

// Resource returns the named asset. A miss is fetched and cached; when the
// asset cannot be fetched the root asset is returned instead, or nil when
// even that is unavailable.
func (cache *Cache) Resource(name string) fyne.Resource {
	if resource, ok := cache.storage.match(cache.name, name); ok {
		return resource
	}

	data, err := fetchFirst(cache.fetchers, name)
	if err == nil {
		resource := fyne.NewStaticResource(name, data)
		cache.storage.put(cache.name, resource)
		return resource
	}
	slog.Debug("Asset unavailable, serving root asset", logfields.Path(name), logfields.Error(err))

	if name == cache.root {
		return nil
	}
	if resource, ok := cache.storage.match(cache.name, cache.root); ok {
		return resource
	}
	return nil
}
