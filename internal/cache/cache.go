// Package cache stores embedding vectors and judge verdicts between runs,
// so batch evaluations do not re-bill identical external calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the common interface over the memory, disk and layered stores.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from the given parts (kind, model name,
// input text, ...). Parts are joined with a NUL separator before hashing so
// distinct part boundaries never collide.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "ece:v1:" + hex.EncodeToString(hash[:])
}
