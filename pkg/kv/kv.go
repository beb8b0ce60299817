package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// StoreType selects a storage backend.
type StoreType string

const (
	StoreTypeFile   StoreType = "file"
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// ErrNotFound is returned by Get when a slot does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is a keyed slot of bytes. It stands in for the browser-local storage
// the web client used: small JSON values, one slot per key, no coordination
// between concurrent processes (last writer wins).
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, key string) error
}

// Config carries backend-specific settings.
type Config struct {
	// Dir is the state directory for the file backend.
	Dir string
	// RedisAddr and RedisDB configure the redis backend.
	RedisAddr string
	RedisDB   int
}

// NewStore is the factory for storage backends.
func NewStore(storeType StoreType, cfg Config, log logger.Logger) (Store, error) {
	switch storeType {
	case StoreTypeFile:
		return NewFileStore(cfg.Dir, log)
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisDB, log), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
