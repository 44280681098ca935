package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port          string
	DatabaseDSN   string
	Env           string
	BackupDir     string
	BackupKeep    int
	SQLitePath    string
	SessionSecret string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.SQLitePath = getEnv("SQLITE_PATH", filepath.Join("instance", "kasir.db"))
	cfg.BackupDir = getEnv("BACKUP_DIR", "backups")
	cfg.BackupKeep = getEnvInt("BACKUP_KEEP", 10)
	cfg.SessionSecret = getEnv("SESSION_SECRET", "")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
