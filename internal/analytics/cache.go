package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "analytics:version"
	bumpChannel     = "analytics.bump"
)

// Cache wraps Redis based caching with versioning controls. A nil Cache or a
// Cache without a client passes every lookup straight to the loader.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

// NewCache instantiates the cache helper. A non-positive ttl disables caching.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		client = nil
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// RegisterMetrics registers a lookup counter labelled hit, miss or error.
func (c *Cache) RegisterMetrics(reg prometheus.Registerer) error {
	if c == nil || reg == nil {
		return nil
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "servify_analytics_cache_lookups_total",
		Help: "Analytics cache lookups by result.",
	}, []string{"result"})
	if err := reg.Register(lookups); err != nil {
		return fmt.Errorf("register cache metrics: %w", err)
	}
	c.lookups = lookups
	return nil
}

func (c *Cache) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader.
// Redis failures degrade to calling the loader; loader errors are returned
// unchanged.
func (c *Cache) FetchJSON(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if !c.enabled() {
		return loadInto(ctx, dest, loader)
	}
	key, err := c.BuildKey(ctx, parts...)
	if err != nil {
		c.count("error")
		c.warn("cache version", err)
		return loadInto(ctx, dest, loader)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if err := json.Unmarshal(payload, dest); err == nil {
			c.count("hit")
			return nil
		}
		c.warn("cache decode", err)
	} else if !errors.Is(err, redis.Nil) {
		c.count("error")
		c.warn("cache get", err)
		return loadInto(ctx, dest, loader)
	}
	c.count("miss")
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.warn("cache set", err)
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return 0, err
	}
	return ver, c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

func (c *Cache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.Any("error", err))
	}
}

func loadInto(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// keyToken escapes a key part so filter values cannot collide across separators.
func keyToken(v string) string {
	if v == "" {
		return "*"
	}
	return url.QueryEscape(v)
}

func filterKeyParts(kind string, f FilterSet, now time.Time) []string {
	cutoff := "-"
	if t, ok := f.Cutoff(now); ok {
		cutoff = t.Format("2006-01-02")
	}
	return []string{
		"analytics", kind,
		keyToken(dimension(f.Brand)),
		keyToken(dimension(f.ProductSubcategory)),
		keyToken(dimension(f.Store)),
		cutoff,
	}
}
