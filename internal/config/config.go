// Package config provides configuration management for the personaut
// engine. Scalar settings load from environment variables with the
// PERSONAUT_ prefix and carry sensible defaults; structured tuning data
// (the category transition table, trait-coefficient overrides) lives in
// an optional YAML settings document that can be hot-reloaded.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all scalar configuration for the engine.
type Config struct {
	Engine    EngineConfig
	Trust     TrustConfig
	Storage   StorageConfig
	Embedding EmbeddingConfig

	// SettingsPath points at the optional YAML settings document.
	// Empty means built-in defaults only.
	// Env var: PERSONAUT_SETTINGS_PATH
	SettingsPath string
}

// EngineConfig tunes the emotional dynamics.
type EngineConfig struct {
	Volatility  float64 // transition step magnitude (default: 0.2)
	HistorySize int     // state calculator FIFO bound (default: 10)
	DecayFactor float64 // RECENT-mode weight base (default: 0.8)
}

// TrustConfig tunes the relationship graph.
type TrustConfig struct {
	StrangerTrust float64 // trust between unconnected personas (default: 0.3)
	MaxPathDepth  int     // BFS depth bound (default: 6)
}

// StorageConfig selects and connects the memory store.
type StorageConfig struct {
	Engine string // memory, sqlite, or postgres (default: memory)
	DSN    string // SQLite path or PostgreSQL connection string
}

// EmbeddingConfig tunes the embedder decorator stack.
type EmbeddingConfig struct {
	Dimension         int           // vector size (default: 256)
	CacheSize         int           // LRU entries (default: 1024)
	RequestsPerSecond float64       // rate limit (default: 10)
	Burst             int           // rate limit burst (default: 5)
	RedisAddr         string        // Redis cache address, empty disables
	RedisTTL          time.Duration // Redis entry lifetime (default: 24h)
}

// LoadConfig reads configuration from PERSONAUT_* environment variables,
// falling back to the documented defaults.
func LoadConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Volatility:  getEnvFloat("PERSONAUT_VOLATILITY", 0.2),
			HistorySize: getEnvInt("PERSONAUT_HISTORY_SIZE", 10),
			DecayFactor: getEnvFloat("PERSONAUT_DECAY_FACTOR", 0.8),
		},
		Trust: TrustConfig{
			StrangerTrust: getEnvFloat("PERSONAUT_STRANGER_TRUST", 0.3),
			MaxPathDepth:  getEnvInt("PERSONAUT_MAX_PATH_DEPTH", 6),
		},
		Storage: StorageConfig{
			Engine: getEnv("PERSONAUT_STORAGE_ENGINE", "memory"),
			DSN:    getEnv("PERSONAUT_STORAGE_DSN", "./data/personaut.db"),
		},
		Embedding: EmbeddingConfig{
			Dimension:         getEnvInt("PERSONAUT_EMBEDDING_DIMENSION", 256),
			CacheSize:         getEnvInt("PERSONAUT_EMBEDDING_CACHE_SIZE", 1024),
			RequestsPerSecond: getEnvFloat("PERSONAUT_EMBEDDING_RPS", 10),
			Burst:             getEnvInt("PERSONAUT_EMBEDDING_BURST", 5),
			RedisAddr:         getEnv("PERSONAUT_REDIS_ADDR", ""),
			RedisTTL:          getEnvDuration("PERSONAUT_REDIS_TTL", 24*time.Hour),
		},
		SettingsPath: getEnv("PERSONAUT_SETTINGS_PATH", ""),
	}
}

// getEnv retrieves a string environment variable or returns a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a
// default. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a
// default. Unparseable values fall back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable ("24h",
// "90s") or returns a default. Unparseable values fall back to the
// default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
