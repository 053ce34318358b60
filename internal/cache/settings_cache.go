package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

const settingsKey = "site_settings"

// SettingsFetcher loads the settings record from the backing store
type SettingsFetcher func(ctx context.Context) (*models.Settings, error)

// SettingsCache is a read-through cache in front of the settings singleton.
// Settings are read on nearly every public request and change rarely, so a
// short in-process TTL keeps them off the database hot path.
type SettingsCache struct {
	cache   *gocache.Cache
	fetcher SettingsFetcher
	ttl     time.Duration
}

// NewSettingsCache creates a settings cache with the given TTL
func NewSettingsCache(fetcher SettingsFetcher, ttl time.Duration) *SettingsCache {
	return &SettingsCache{
		cache:   gocache.New(ttl, 2*ttl),
		fetcher: fetcher,
		ttl:     ttl,
	}
}

// Get returns the cached settings, fetching from the store on a miss
func (c *SettingsCache) Get(ctx context.Context) (*models.Settings, error) {
	if cached, found := c.cache.Get(settingsKey); found {
		metrics.CacheHits.WithLabelValues("settings").Inc()
		settings := cached.(models.Settings)
		return &settings, nil
	}

	metrics.CacheMisses.WithLabelValues("settings").Inc()

	settings, err := c.fetcher(ctx)
	if err != nil {
		return nil, err
	}

	// Stored by value so callers cannot mutate the cached copy
	c.cache.Set(settingsKey, *settings, c.ttl)
	return settings, nil
}

// Put replaces the cached settings after a successful write
func (c *SettingsCache) Put(settings *models.Settings) {
	c.cache.Set(settingsKey, *settings, c.ttl)
}

// Invalidate drops the cached settings
func (c *SettingsCache) Invalidate() {
	c.cache.Delete(settingsKey)
}
