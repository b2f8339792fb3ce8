package config

import (
	"os"
	"strconv"
	"strings"

	"urlshortener/internal/util"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	DatabaseDSN string // required
	RedisAddr   string // optional; empty disables the Redis-backed limiter
	HTTPAddr    string // listen address, host:port
	CORSOrigin  string // allowed origin for browser clients
	CodeLength  int    // generated short code length
	MaxDBConns  int    // connection pool bound
}

// FromEnv loads configuration with defaults for local development.
// Recognized: DATABASE_DSN, REDIS_ADDR, HTTP_ADDR, CORS_ALLOWED_ORIGIN,
// SHORT_CODE_LENGTH, DB_MAX_OPEN_CONNS.
func FromEnv() Config {
	cfg := Config{
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "*"),
		CodeLength:  getEnvInt("SHORT_CODE_LENGTH", util.DefaultCodeLength),
		MaxDBConns:  getEnvInt("DB_MAX_OPEN_CONNS", 10),
	}
	// sha256 hex caps the code width at 64
	if cfg.CodeLength <= 0 || cfg.CodeLength > 64 {
		cfg.CodeLength = util.DefaultCodeLength
	}
	if cfg.MaxDBConns <= 0 {
		cfg.MaxDBConns = 10
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
