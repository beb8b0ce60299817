package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	appOnce   sync.Once
	appConfig *AppConfig
)

// AppConfig carries everything the chat client needs to reach the document
// service and keep local state.
type AppConfig struct {
	APIBaseURL  string `yaml:"apiBaseUrl"`
	StateDir    string `yaml:"stateDir"`
	StoreType   string `yaml:"storeType"`
	RedisAddr   string `yaml:"redisAddr"`
	RedisDB     int    `yaml:"redisDb"`
	LogLevel    string `yaml:"logLevel"`
	LogEncoding string `yaml:"logEncoding"`
	LogPath     string `yaml:"logPath"`
}

// GetAppConfig loads the configuration once: defaults, then an optional
// jurista.yaml next to the binary, then environment variables (the .env
// file is honored when present).
func GetAppConfig() *AppConfig {
	appOnce.Do(func() {
		_ = godotenv.Load()

		cfg := &AppConfig{
			APIBaseURL:  "http://localhost:4000",
			StateDir:    defaultStateDir(),
			StoreType:   "file",
			RedisAddr:   "localhost:6379",
			LogLevel:    "info",
			LogEncoding: "json",
			LogPath:     "logs/jurista.log",
		}

		if data, err := os.ReadFile("jurista.yaml"); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}

		if v := os.Getenv("JURISTA_API_URL"); v != "" {
			cfg.APIBaseURL = v
		}
		if v := os.Getenv("JURISTA_STATE_DIR"); v != "" {
			cfg.StateDir = v
		}
		if v := os.Getenv("JURISTA_STORE"); v != "" {
			cfg.StoreType = v
		}
		if v := os.Getenv("JURISTA_REDIS_ADDR"); v != "" {
			cfg.RedisAddr = v
		}
		if v := os.Getenv("JURISTA_LOG_LEVEL"); v != "" {
			cfg.LogLevel = v
		}

		cfg.APIBaseURL = NormalizeBaseURL(cfg.APIBaseURL)
		appConfig = cfg
	})
	return appConfig
}

// NormalizeBaseURL defaults scheme-less values to https, matching how the
// web client treated its API URL setting.
func NormalizeBaseURL(url string) string {
	if url == "" {
		return "http://localhost:4000"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "https://" + url
	}
	return url
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jurista"
	}
	return filepath.Join(home, ".jurista")
}
