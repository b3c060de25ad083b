// Package config loads service configuration from the environment, after
// reading an optional .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Preference store backends.
const (
	PrefsMemory = "memory"
	PrefsRedis  = "redis"
)

// Config holds the service settings.
type Config struct {
	Addr        string // HTTP listen address
	DataDir     string // directory with <city>/boroughs.json; empty means embedded samples
	DefaultCity string
	Prefs       string // memory or redis
	RedisHost   string
	RedisPort   string
	RedisPass   string
	RedisDB     int
}

// RedisAddr returns host:port.
func (c *Config) RedisAddr() string { return c.RedisHost + ":" + c.RedisPort }

// Load reads envFiles (".env" when none given; missing files are ignored)
// and then the environment. Variables already set win over the files.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return &Config{
		Addr:        getEnv("SAFEMAP_ADDR", ":8080"),
		DataDir:     getEnv("SAFEMAP_DATA_DIR", ""),
		DefaultCity: getEnv("SAFEMAP_DEFAULT_CITY", "london"),
		Prefs:       getEnv("SAFEMAP_PREFS", PrefsMemory),
		RedisHost:   getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:   getEnv("REDIS_PORT", "6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt ignores unparsable and negative values.
func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		return n
	}
	return defaultValue
}
