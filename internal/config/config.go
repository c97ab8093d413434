package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client reads from the environment
type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration
	LogLevel    string
	LogJSON     bool
	DataDir     string // location of the local prefs database
}

// Load reads .env (if present) and the environment, applying defaults.
// Nothing here is required: the client runs against a local backend out of
// the box.
func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := os.Getenv("ORGANIZER_API_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:5000/api"
	}

	timeout := 10 * time.Second
	if v := os.Getenv("ORGANIZER_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	logLevel := os.Getenv("ORGANIZER_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logJSON := os.Getenv("ORGANIZER_LOG_JSON") == "true"

	dataDir := os.Getenv("ORGANIZER_DATA_DIR")
	if dataDir == "" {
		var err error
		dataDir, err = defaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		APIBaseURL:  baseURL,
		HTTPTimeout: timeout,
		LogLevel:    logLevel,
		LogJSON:     logJSON,
		DataDir:     dataDir,
	}, nil
}

// defaultDataDir follows XDG with a home-directory fallback
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "organizer"), nil
}
