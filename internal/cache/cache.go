package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// Cache defines the interface for caching transcription results between runs
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from arbitrary identifying data
func Key(data []byte) string {
	hash := sha256.Sum256(data)
	return "lectograph:v1:" + hex.EncodeToString(hash[:])
}

// FileKey generates a cache key from a file's content plus a discriminator
// (typically the STT provider and model, so switching models misses).
func FileKey(path, discriminator string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	h.Write([]byte(discriminator))
	return "lectograph:v1:" + hex.EncodeToString(h.Sum(nil)), nil
}
