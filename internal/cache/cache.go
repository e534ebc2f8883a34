// Package cache holds the injected analysis-result cache. The pipeline never
// touches a process-wide singleton; callers that want caching hand one in.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching serialized graphs
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the analysis parameters: a content hash of
// the input text plus whatever distinguishes the run (stance, persona, ...).
func Key(input string, params ...string) string {
	hash := sha256.Sum256([]byte(input + "\x00" + strings.Join(params, "\x00")))
	return "argus:v1:" + hex.EncodeToString(hash[:])
}
