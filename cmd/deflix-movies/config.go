package main

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type config struct {
	BaseURL          string        `json:"baseURL"`
	APIToken         string        `json:"-"`
	Timeout          time.Duration `json:"timeout"`
	StorageType      string        `json:"storageType"`
	StoragePath      string        `json:"storagePath"`
	CachePath        string        `json:"cachePath"`
	CacheMaxEntries  int           `json:"cacheMaxEntries"`
	CacheTTL         time.Duration `json:"cacheTTL"`
	RedisAddr        string        `json:"redisAddr"`
	RedisCreds       string        `json:"-"`
	LastResolvedWins bool          `json:"lastResolvedWins"`
	LogLevel         string        `json:"logLevel"`
	LogEncoding      string        `json:"logEncoding"`
	ExtraHeaders     []string      `json:"extraHeaders"`
	SocksProxyAddr   string        `json:"socksProxyAddr"`
	EnvPrefix        string        `json:"envPrefix"`
}

func parseConfig(logger *zap.Logger) config {
	result := config{}

	// Flags
	var (
		baseURL          = flag.String("baseURL", "http://localhost:8080/api/", `Base URL of the movies API. Resources like "movies" are appended as is, so it should end with a slash.`)
		apiToken         = flag.String("apiToken", "", "Bearer token to send to the movies API. No Authorization header is sent if empty.")
		timeout          = flag.Duration("timeout", 5*time.Second, "Timeout for requests to the movies API. The format must be acceptable by Go's 'time.ParseDuration()', for example \"5s\".")
		storageType      = flag.String("storageType", "badger", `Storage for favorites. Can be "badger", "file" or "memory", where "memory" doesn't persist anything across runs.`)
		storagePath      = flag.String("storagePath", "", `Path for the favorites storage (the BadgerDB directory or the directory with one JSON file per key). An empty value will lead to 'os.UserCacheDir()+"/deflix-movies/<storageType>"'.`)
		cachePath        = flag.String("cachePath", "", `Path for loading the persisted response cache on startup and persisting it on exit. An empty value will lead to 'os.UserCacheDir()+"/deflix-movies/cache"'.`)
		cacheMaxEntries  = flag.Int("cacheMaxEntries", 1000, "Max number of cached API responses. When the cache is full, the oldest entry is evicted. 0 means no limit.")
		cacheTTL         = flag.Duration("cacheTTL", 24*time.Hour, "Max age of cached API responses. 0 means cached responses never expire.")
		redisAddr        = flag.String("redisAddr", "", `Redis host and port, for example "localhost:6379". It's used for the response cache. Keep empty to use in-memory go-cache.`)
		redisCreds       = flag.String("redisCreds", "", `Credentials for Redis. Password for Redis version 5 and older, username and password for Redis version 6 and newer. Use the colon character (":") for separating username and password. This implies you can't use a colon in the password when using Redis version 5 or older.`)
		lastResolvedWins = flag.Bool("lastResolvedWins", false, "Apply fetch results in the order they arrive, even if a newer fetch was started in the meantime")
		logLevel         = flag.String("logLevel", "info", `Log level to show only logs with the given and more severe levels. Can be "debug", "info", "warn", "error".`)
		logEncoding      = flag.String("logEncoding", "console", `Log encoding. Can be "console" or "json".`)
		extraHeaders     = flag.String("extraHeaders", "", `Additional HTTP request headers to set for requests to the movies API, in a format like "X-Foo: bar", separated by newline characters ("\n")`)
		socksProxyAddr   = flag.String("socksProxyAddr", "", "SOCKS5 proxy address for accessing the movies API, for example via the Tor network (where \"127.0.0.1:9050\" would be typical value)")
		envPrefix        = flag.String("envPrefix", "", "Prefix for environment variables")
	)

	flag.Parse()

	if *envPrefix != "" && !strings.HasSuffix(*envPrefix, "_") {
		*envPrefix += "_"
	}
	result.EnvPrefix = *envPrefix

	// Only overwrite the values by their env var counterparts that have not been set (and that *are* set via env var).
	var err error
	if !isArgSet("baseURL") {
		if val, ok := os.LookupEnv(*envPrefix + "API_BASE_URL"); ok {
			*baseURL = val
		}
	}
	result.BaseURL = *baseURL

	if !isArgSet("apiToken") {
		if val, ok := os.LookupEnv(*envPrefix + "API_TOKEN"); ok {
			*apiToken = val
		}
	}
	result.APIToken = *apiToken

	if !isArgSet("timeout") {
		if val, ok := os.LookupEnv(*envPrefix + "TIMEOUT"); ok {
			if *timeout, err = time.ParseDuration(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to time.Duration", zap.Error(err), zap.String("envVar", "TIMEOUT"))
			}
		}
	}
	result.Timeout = *timeout

	if !isArgSet("storageType") {
		if val, ok := os.LookupEnv(*envPrefix + "STORAGE_TYPE"); ok {
			*storageType = val
		}
	}
	result.StorageType = *storageType

	if !isArgSet("storagePath") {
		if val, ok := os.LookupEnv(*envPrefix + "STORAGE_PATH"); ok {
			*storagePath = val
		}
	}
	result.StoragePath = *storagePath

	if !isArgSet("cachePath") {
		if val, ok := os.LookupEnv(*envPrefix + "CACHE_PATH"); ok {
			*cachePath = val
		}
	}
	result.CachePath = *cachePath

	if !isArgSet("cacheMaxEntries") {
		if val, ok := os.LookupEnv(*envPrefix + "CACHE_MAX_ENTRIES"); ok {
			if *cacheMaxEntries, err = strconv.Atoi(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to int", zap.Error(err), zap.String("envVar", "CACHE_MAX_ENTRIES"))
			}
		}
	}
	result.CacheMaxEntries = *cacheMaxEntries

	if !isArgSet("cacheTTL") {
		if val, ok := os.LookupEnv(*envPrefix + "CACHE_TTL"); ok {
			if *cacheTTL, err = time.ParseDuration(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to time.Duration", zap.Error(err), zap.String("envVar", "CACHE_TTL"))
			}
		}
	}
	result.CacheTTL = *cacheTTL

	if !isArgSet("redisAddr") {
		if val, ok := os.LookupEnv(*envPrefix + "REDIS_ADDR"); ok {
			*redisAddr = val
		}
	}
	result.RedisAddr = *redisAddr

	if !isArgSet("redisCreds") {
		if val, ok := os.LookupEnv(*envPrefix + "REDIS_CREDS"); ok {
			*redisCreds = val
		}
	}
	result.RedisCreds = *redisCreds

	if !isArgSet("lastResolvedWins") {
		if val, ok := os.LookupEnv(*envPrefix + "LAST_RESOLVED_WINS"); ok {
			if *lastResolvedWins, err = strconv.ParseBool(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to bool", zap.Error(err), zap.String("envVar", "LAST_RESOLVED_WINS"))
			}
		}
	}
	result.LastResolvedWins = *lastResolvedWins

	if !isArgSet("logLevel") {
		if val, ok := os.LookupEnv(*envPrefix + "LOG_LEVEL"); ok {
			*logLevel = val
		}
	}
	result.LogLevel = *logLevel

	if !isArgSet("logEncoding") {
		if val, ok := os.LookupEnv(*envPrefix + "LOG_ENCODING"); ok {
			*logEncoding = val
		}
	}
	result.LogEncoding = *logEncoding

	if !isArgSet("extraHeaders") {
		if val, ok := os.LookupEnv(*envPrefix + "EXTRA_HEADERS"); ok {
			*extraHeaders = val
		}
	}
	result.ExtraHeaders = splitHeaders(*extraHeaders)

	if !isArgSet("socksProxyAddr") {
		if val, ok := os.LookupEnv(*envPrefix + "SOCKS_PROXY_ADDR"); ok {
			*socksProxyAddr = val
		}
	}
	result.SocksProxyAddr = *socksProxyAddr

	return result
}

func splitHeaders(s string) []string {
	var result []string
	for _, header := range strings.Split(s, "\n") {
		if header = strings.TrimSpace(header); header != "" {
			result = append(result, header)
		}
	}
	return result
}

func (c *config) validate(logger *zap.Logger) {
	if c.BaseURL == "" {
		logger.Fatal("baseURL must not be empty")
	}

	switch c.StorageType {
	case "badger", "file", "memory":
	default:
		logger.Fatal(`storageType must be one of "badger", "file" or "memory"`, zap.String("storageType", c.StorageType))
	}

	if c.StoragePath == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			logger.Fatal("Couldn't determine user cache directory via `os.UserCacheDir()`", zap.Error(err))
		}
		c.StoragePath = filepath.Join(userCacheDir, "deflix-movies", c.StorageType)
	} else {
		c.StoragePath = filepath.Clean(c.StoragePath)
	}
	// If the dir doesn't exist, BadgerDB and the file storage create it.

	if c.CachePath == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			logger.Fatal("Couldn't determine user cache directory via `os.UserCacheDir()`", zap.Error(err))
		}
		c.CachePath = filepath.Join(userCacheDir, "deflix-movies", "cache")
	} else {
		c.CachePath = filepath.Clean(c.CachePath)
	}
	// If the dir doesn't exist, it's created when the cache is persisted.

	if c.CacheMaxEntries < 0 {
		logger.Fatal("cacheMaxEntries must not be negative", zap.Int("cacheMaxEntries", c.CacheMaxEntries))
	}
	if c.CacheTTL < 0 {
		logger.Fatal("cacheTTL must not be negative", zap.Duration("cacheTTL", c.CacheTTL))
	}

	if c.LogEncoding != "console" && c.LogEncoding != "json" {
		logger.Fatal(`logEncoding must be one of "console" or "json"`, zap.String("logEncoding", c.LogEncoding))
	}
}

// isArgSet returns true if the argument you're looking for is actually set as command line argument.
// Pass without "-" prefix.
func isArgSet(arg string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == arg {
			found = true
		}
	})
	return found
}
