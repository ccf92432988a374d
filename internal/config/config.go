package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	GitHubToken    string
	GitHubRepo     string
	GitHubBranch   string
	GitHubPath     string
	SaveAttempts   int
	SaveRetryDelay time.Duration
	LogLevel       string
	LogFile        string
}

func Load() *Config {
	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "/data/shelfinv.db"),
		GitHubToken:    getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:     getEnv("GITHUB_REPO", ""),
		GitHubBranch:   getEnv("GITHUB_BRANCH", "main"),
		GitHubPath:     getEnv("GITHUB_PATH", "inventory.xlsx"),
		SaveAttempts:   getEnvInt("SAVE_ATTEMPTS", 3),
		SaveRetryDelay: getEnvDuration("SAVE_RETRY_DELAY", 2*time.Second),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}
}

// RemoteConfigured reports whether remote persistence can be used. Without
// both a token and a repository the app runs in export-only mode.
func (c *Config) RemoteConfigured() bool {
	return c.GitHubToken != "" && c.GitHubRepo != ""
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil && d >= 0 {
			return d
		}
	}
	return defaultVal
}
