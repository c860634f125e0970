package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from an arbitrary identifier
// (search query, feed URL).
func Key(kind, id string) string {
	hash := sha256.Sum256([]byte(id))
	return "pressgauge:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}
