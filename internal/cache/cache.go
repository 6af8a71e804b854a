// Package cache stores generated images in Redis so repeated prompts skip
// the batching pipeline entirely.
//
// Keys are derived from everything that determines the output: the styled
// prompt, the inference steps and the model name. A cache failure is never
// fatal to a request; callers log it and fall through to generation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/validate"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "lumen:image:"

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("image cache is closed")

// Config holds Redis connection and expiry settings.
type Config struct {
	Addr     string        `json:"addr" yaml:"addr"`
	Password string        `json:"password" yaml:"password"`
	DB       int           `json:"db" yaml:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

// DefaultConfig returns a config with no address, which leaves caching off.
func DefaultConfig() *Config {
	return &Config{
		DB:  0,
		TTL: time.Hour,
	}
}

// Enabled reports whether a Redis address is configured.
func (c *Config) Enabled() bool {
	return c.Addr != ""
}

// Validate checks an enabled config.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if err := validate.ValidateDialAddress(c.Addr, "redis address"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.TTL, "cache TTL"); err != nil {
		return err
	}
	if c.DB < 0 {
		return fmt.Errorf("redis DB must be non-negative, got %d", c.DB)
	}
	return nil
}

// ImageCache is a Redis-backed image store.
type ImageCache struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.RWMutex
	closed bool

	hits   int64
	misses int64
}

// NewImageCache connects to Redis and verifies the connection with a ping.
func NewImageCache(ctx context.Context, config *Config) (*ImageCache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}

	logging.Info("Cache: Connected to redis at %s (ttl: %v)", config.Addr, config.TTL)

	return &ImageCache{
		client: client,
		ttl:    config.TTL,
	}, nil
}

// Key returns the cache key for a styled prompt rendered with the given
// steps and model.
func Key(styledPrompt string, steps int, model string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(steps)))
	h.Write([]byte{0})
	h.Write([]byte(styledPrompt))
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the image stored under key. A miss is (nil, false, nil).
func (c *ImageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, false, ErrClosed
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	atomic.AddInt64(&c.hits, 1)
	return data, true, nil
}

// Set stores image under key with the configured TTL.
func (c *ImageCache) Set(ctx context.Context, key string, image []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}

	if err := c.client.Set(ctx, key, image, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Stats returns hit and miss counts since startup.
func (c *ImageCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close releases the Redis connection pool. Later calls return ErrClosed.
func (c *ImageCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}
