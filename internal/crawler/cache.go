package crawler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "fashionetl:page:"
	cachePingWait  = 2 * time.Second
)

// PageCache stores raw page bodies by URL. Implementations swallow their
// own failures; a broken cache behaves like an empty one.
type PageCache interface {
	Get(ctx context.Context, url string) (string, bool)
	Set(ctx context.Context, url, body string)
}

// RedisCache stops talking to Redis after the first failed command.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration

	down atomic.Bool
}

var _ PageCache = (*RedisCache)(nil)

// redisLogger sends go-redis internal messages to zap instead of stderr.
type redisLogger struct{}

func (redisLogger) Printf(_ context.Context, format string, v ...interface{}) {
	zap.S().Debugf("redis: "+format, v...)
}

func init() {
	redis.SetLogger(redisLogger{})
}

// redisOptions accepts a redis:// URL or a bare host:port. Commands are not
// retried.
func redisOptions(addr string) (*redis.Options, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		var err error
		if opts, err = redis.ParseURL(addr); err != nil {
			return nil, err
		}
	}
	opts.MaxRetries = -1
	return opts, nil
}

// NewRedisCache connects to addr and fails when the server does not answer
// a PING.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redisOptions(addr)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cachePingWait)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{Client: client, TTL: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, url string) (string, bool) {
	if c.down.Load() {
		return "", false
	}
	val, err := c.Client.Get(ctx, cacheKeyPrefix+url).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.fail("get", url, err)
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, url, body string) {
	if c.down.Load() {
		return
	}
	if err := c.Client.Set(ctx, cacheKeyPrefix+url, body, c.TTL).Err(); err != nil {
		c.fail("set", url, err)
	}
}

func (c *RedisCache) fail(op, url string, err error) {
	if c.down.CompareAndSwap(false, true) {
		zap.S().Warnf("page cache %s %s: %v; cache disabled for this run", op, url, err)
	}
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}
