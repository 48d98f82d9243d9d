package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for decision memoization stores
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from claim text. The version prefix invalidates
// old entries when the decision schema changes.
func Key(claimText string) string {
	hash := sha256.Sum256([]byte(claimText))
	return "polemia:v1:" + hex.EncodeToString(hash[:])
}
