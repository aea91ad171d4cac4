package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

// CacheService stores JSON values in Redis. A missing key is not an error:
// Get leaves dest untouched.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("redis host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 6379
	}
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewFromClient(client, logger), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, logger: logger}
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache_decode_failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *CacheService) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

func (c *CacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CacheService) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ParseRedisURL accepts redis://[:password@]host[:port][/db] and rediss://.
func ParseRedisURL(raw string) (*CacheConfig, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	portStr := u.Port()
	if portStr == "" {
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &CacheConfig{Host: host, Port: port, Password: pass, DB: db, TLS: u.Scheme == "rediss"}, nil
}
