package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/api"
)

const (
	responseCacheName = "responses"
	redisKeyPrefix    = "deflix-movies_"
)

func registerTypes() {
	// For the persisted response cache
	gob.Register(api.CacheItem{})
}

// openResponseCache creates the response cache for the API client.
// With a Redis address it's a Redis cache, otherwise an in-memory cache which is loaded from a file and persisted to it when the returned function is called.
func openResponseCache(ctx context.Context, cfg config, fs afero.Fs, logger *zap.Logger) (api.Cache, func() error, error) {
	if cfg.RedisAddr != "" {
		rdb := newRedisClient(cfg.RedisAddr, cfg.RedisCreds)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("Couldn't ping Redis: %w", err)
		}
		logger.Debug("Using Redis response cache", zap.String("redisAddr", cfg.RedisAddr))
		return api.NewRedisCache(rdb, redisKeyPrefix, cfg.CacheTTL), rdb.Close, nil
	}

	filePath := filepath.Join(cfg.CachePath, responseCacheName+".gob")
	items, err := loadGoCache(fs, filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No persisted response cache found", zap.String("file", filePath))
		} else {
			logger.Warn("Couldn't load persisted response cache, starting with an empty one", zap.Error(err), zap.String("file", filePath))
		}
		items = map[string]gocache.Item{}
	}
	cache := api.NewInMemoryCacheFrom(cfg.CacheMaxEntries, cfg.CacheTTL, items)
	closeFn := func() error {
		logCacheStats(map[string]*api.InMemoryCache{responseCacheName: cache}, logger)
		return persistCaches(fs, cfg.CachePath, map[string]*api.InMemoryCache{responseCacheName: cache}, logger)
	}
	return cache, closeFn, nil
}

// newRedisClient creates a Redis client. creds is either a password or "username:password".
func newRedisClient(addr, creds string) *redis.Client {
	options := &redis.Options{
		Addr: addr,
	}
	if creds != "" {
		if i := strings.Index(creds, ":"); i >= 0 {
			options.Username = creds[:i]
			options.Password = creds[i+1:]
		} else {
			options.Password = creds
		}
	}
	return redis.NewClient(options)
}

func saveGoCache(fs afero.Fs, items map[string]gocache.Item, filePath string) (err error) {
	file, err := fs.Create(filePath)
	if err != nil {
		return fmt.Errorf("Couldn't create go-cache file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("Couldn't close go-cache file: %w", closeErr)
		}
	}()
	encoder := gob.NewEncoder(file)
	if err = encoder.Encode(items); err != nil {
		return fmt.Errorf("Couldn't encode items for go-cache file: %w", err)
	}
	return nil
}

func loadGoCache(fs afero.Fs, filePath string) (map[string]gocache.Item, error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open go-cache file: %w", err)
	}
	defer file.Close()
	decoder := gob.NewDecoder(file)
	result := map[string]gocache.Item{}
	if err = decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("Couldn't decode items from go-cache file: %w", err)
	}
	return result, nil
}

func persistCaches(fs afero.Fs, cacheFilePath string, caches map[string]*api.InMemoryCache, logger *zap.Logger) error {
	logger.Debug("Persisting caches...", zap.String("cacheFilePath", cacheFilePath))
	start := time.Now()

	// If the dir doesn't exist yet, we'll create it
	if err := fs.MkdirAll(cacheFilePath, 0o700); err != nil {
		return fmt.Errorf("Couldn't create cache directory: %w", err)
	}

	var result error
	for name, cache := range caches {
		if err := saveGoCache(fs, cache.Items(), filepath.Join(cacheFilePath, name+".gob")); err != nil {
			logger.Error("Couldn't save cache to file", zap.Error(err), zap.String("cache", name))
			result = multierr.Append(result, err)
		}
	}

	duration := time.Since(start).Milliseconds()
	durationString := strconv.FormatInt(duration, 10) + "ms"
	logger.Debug("Persisted caches", zap.String("duration", durationString))
	return result
}

func logCacheStats(caches map[string]*api.InMemoryCache, logger *zap.Logger) {
	for name, cache := range caches {
		logger.Debug("Cache stats", zap.String("cache", name), zap.Int("itemCount", cache.ItemCount()))
	}
}
