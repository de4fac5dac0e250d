package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port    string
	Storage string
	// Storage backends
	DatabaseURL string
	DataDir     string
	// Result cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Rate provider
	Provider     string
	DolarAPIBase string
	// Fetching
	FetchTimeout   time.Duration
	RunTimeout     time.Duration
	FetchRPS       float64
	DebugSnapshots bool
	SnapshotsDir   string
	// Worker
	RefreshInterval time.Duration
	// History policy
	SuppressDuplicates bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func floatDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", "8080"),
		Storage:            getEnv("STORAGE", "file"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DataDir:            getEnv("DATA_DIR", "data"),
		CacheBackend:       getEnv("CACHE_BACKEND", "memory"),
		CacheTTL:           durMS("CACHE_TTL_MS", 3600000),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		Provider:           getEnv("PROVIDER", "dolarapi"),
		DolarAPIBase:       getEnv("DOLARAPI_BASE", "https://dolarapi.com"),
		FetchTimeout:       durMS("FETCH_TIMEOUT_MS", 15000),
		RunTimeout:         durMS("RUN_TIMEOUT_MS", 60000),
		FetchRPS:           floatDef(getEnv("FETCH_RPS", "1"), 1),
		DebugSnapshots:     boolDef(getEnv("DEBUG_SNAPSHOTS", "false"), false),
		SnapshotsDir:       getEnv("SNAPSHOTS_DIR", "snapshots"),
		RefreshInterval:    durMS("REFRESH_INTERVAL_MS", 3600000),
		SuppressDuplicates: boolDef(getEnv("SUPPRESS_DUPLICATES", "false"), false),
	}
}
