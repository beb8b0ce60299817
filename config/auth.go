package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	authOnce   sync.Once
	authConfig *AuthConfig
)

// AuthConfig holds the identity-provider connection parameters. Only the
// session layer reads these; the API client never sees them.
type AuthConfig struct {
	AuthURL string
	AnonKey string
}

func GetAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		_ = godotenv.Load()

		authConfig = &AuthConfig{
			AuthURL: os.Getenv("JURISTA_AUTH_URL"),
			AnonKey: os.Getenv("JURISTA_ANON_KEY"),
		}
	})
	return authConfig
}
