package stt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ilyakh/lectograph/internal/cache"
)

// CachedClient wraps a Client with a transcription result cache keyed by
// audio content and provider/model, so re-running a pipeline does not re-pay
// for slices that were already transcribed.
type CachedClient struct {
	inner Client
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedClient creates a caching wrapper around inner
func NewCachedClient(inner Client, c cache.Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, cache: c, ttl: ttl}
}

// Name returns the wrapped provider name
func (c *CachedClient) Name() string {
	return c.inner.Name()
}

// Transcribe returns a cached result when the slice content was seen before,
// otherwise delegates to the wrapped client and stores the outcome. Cache
// errors degrade to a plain pass-through, never to a transcription failure.
func (c *CachedClient) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	key, keyErr := cache.FileKey(audioPath, c.inner.Name())
	if keyErr == nil {
		if data, found := c.cache.Get(key); found {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	result, err := c.inner.Transcribe(ctx, audioPath)
	if err != nil {
		return result, err
	}

	if keyErr == nil {
		if data, err := json.Marshal(result); err == nil {
			_ = c.cache.Set(key, data, c.ttl)
		}
	}
	return result, nil
}
