package client

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type cachingTransport struct {
	next      Transport
	rdb       redis.Cmdable
	ttl       time.Duration
	keyPrefix string
}

// NewCachingTransport serves successful responses from Redis for ttl. The key
// is derived from the resource and query parameters only; the access token is
// a header and never part of it. Failed requests are not cached and Redis
// errors fall through to the wrapped transport.
func NewCachingTransport(next Transport, rdb redis.Cmdable, ttl time.Duration, keyPrefix string) Transport {
	return &cachingTransport{
		next:      next,
		rdb:       rdb,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

func (c *cachingTransport) FetchJSON(ctx context.Context, resource string, params Params) ([]byte, error) {
	key := c.cacheKey(resource, params)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		log.Debugf("Cache hit for %s", resource)
		return cached, nil
	case !errors.Is(err, redis.Nil):
		log.Warnf("⚠️ Cache read failed for %s: %v", resource, err)
	}

	body, err := c.next.FetchJSON(ctx, resource, params)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		log.Warnf("⚠️ Cache write failed for %s: %v", resource, err)
	}
	return body, nil
}

func (c *cachingTransport) cacheKey(resource string, params Params) string {
	sum := sha1.Sum([]byte(resource + "?" + params.Key()))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}
