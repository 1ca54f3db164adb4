package api

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CacheItem combines a response and its creation time in a single struct.
// This can be useful for implementing the Cache interface, but is not necessarily required.
type CacheItem struct {
	Response Response
	Created  time.Time
}

// Cache is the interface that the client uses for caching successful responses.
// The key is the full request URL, including the query string.
type Cache interface {
	Set(key string, res Response) error
	Get(key string) (Response, bool, error)
}

var _ Cache = NoCache{}

// NoCache never stores anything.
type NoCache struct{}

// Set implements the Cache interface.
func (NoCache) Set(key string, res Response) error {
	return nil
}

// Get implements the Cache interface.
func (NoCache) Get(key string) (Response, bool, error) {
	return Response{}, false, nil
}

var _ Cache = (*InMemoryCache)(nil)

// InMemoryCache is a Cache backed by github.com/patrickmn/go-cache.
// It's bounded by a max number of entries (the oldest entry is evicted when a new one doesn't fit) and an optional TTL.
// With maxEntries 0 and ttl 0 entries never expire and are never evicted.
type InMemoryCache struct {
	cache      *gocache.Cache
	maxEntries int
	ttl        time.Duration
	// Makes the capacity check and the insertion atomic
	lock *sync.Mutex
}

// NewInMemoryCache creates a new InMemoryCache.
func NewInMemoryCache(maxEntries int, ttl time.Duration) *InMemoryCache {
	return NewInMemoryCacheFrom(maxEntries, ttl, map[string]gocache.Item{})
}

// NewInMemoryCacheFrom creates a new InMemoryCache that's prefilled with the given items, for example from a file that was written with the result of Items().
func NewInMemoryCacheFrom(maxEntries int, ttl time.Duration, items map[string]gocache.Item) *InMemoryCache {
	expiration := gocache.NoExpiration
	var cleanupInterval time.Duration
	if ttl > 0 {
		expiration = ttl
		cleanupInterval = ttl
	}
	return &InMemoryCache{
		cache:      gocache.NewFrom(expiration, cleanupInterval, items),
		maxEntries: maxEntries,
		ttl:        ttl,
		lock:       &sync.Mutex{},
	}
}

// Set implements the Cache interface.
func (c *InMemoryCache) Set(key string, res Response) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.maxEntries > 0 {
		if _, found := c.cache.Get(key); !found && c.cache.ItemCount() >= c.maxEntries {
			c.cache.DeleteExpired()
			if c.cache.ItemCount() >= c.maxEntries {
				c.evictOldest()
			}
		}
	}

	item := CacheItem{
		Response: res,
		Created:  time.Now(),
	}
	c.cache.Set(key, item, gocache.DefaultExpiration)
	return nil
}

// Get implements the Cache interface.
func (c *InMemoryCache) Get(key string) (Response, bool, error) {
	itemIface, found := c.cache.Get(key)
	if !found {
		return Response{}, false, nil
	}
	item, ok := itemIface.(CacheItem)
	if !ok {
		return Response{}, found, fmt.Errorf("Couldn't cast cached value to api.CacheItem: type was: %T", itemIface)
	}
	return item.Response, true, nil
}

// Items returns a copy of all unexpired items, for persisting them.
func (c *InMemoryCache) Items() map[string]gocache.Item {
	return c.cache.Items()
}

// ItemCount returns the number of items, including expired ones that weren't cleaned up yet.
func (c *InMemoryCache) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *InMemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, item := range c.cache.Items() {
		cacheItem, ok := item.Object.(CacheItem)
		if !ok {
			// Can't be used by Get anyway
			c.cache.Delete(key)
			return
		}
		if oldestKey == "" || cacheItem.Created.Before(oldest) {
			oldestKey = key
			oldest = cacheItem.Created
		}
	}
	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

func gobEncode(item CacheItem) ([]byte, error) {
	writer := bytes.Buffer{}
	encoder := gob.NewEncoder(&writer)
	if err := encoder.Encode(item); err != nil {
		return nil, fmt.Errorf("Couldn't encode item: %w", err)
	}
	return writer.Bytes(), nil
}

func gobDecode(data []byte) (CacheItem, error) {
	var item CacheItem
	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&item); err != nil {
		return CacheItem{}, fmt.Errorf("Couldn't decode item: %w", err)
	}
	return item, nil
}
