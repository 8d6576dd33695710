package state

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Checkpoints remember, per listing, the next page a crawl should request so
// an interrupted crawl can resume instead of starting at page 1.
type Checkpoints interface {
	NextPage(ctx context.Context, listingKey string) (int, error)
	SetNextPage(ctx context.Context, listingKey string, page int) error
	Clear(ctx context.Context, listingKey string) error
}

type redisCheckpoints struct {
	redisClient redis.Cmdable
	keyPrefix   string
}

func NewRedisCheckpoints(redisClient redis.Cmdable) Checkpoints {
	return &redisCheckpoints{
		redisClient: redisClient,
		keyPrefix:   "torgmailru:progress:page:",
	}
}

func (s *redisCheckpoints) key(listingKey string) string {
	sum := sha1.Sum([]byte(listingKey))
	return s.keyPrefix + hex.EncodeToString(sum[:])
}

// NextPage returns the checkpointed page, or 0 when none was saved
func (s *redisCheckpoints) NextPage(ctx context.Context, listingKey string) (int, error) {
	val, err := s.redisClient.Get(ctx, s.key(listingKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get checkpoint for %s: %w", listingKey, err)
	}

	page, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse checkpoint for %s: %w", listingKey, err)
	}

	return page, nil
}

func (s *redisCheckpoints) SetNextPage(ctx context.Context, listingKey string, page int) error {
	if err := s.redisClient.Set(ctx, s.key(listingKey), page, 0).Err(); err != nil {
		return fmt.Errorf("failed to set checkpoint for %s: %w", listingKey, err)
	}
	return nil
}

func (s *redisCheckpoints) Clear(ctx context.Context, listingKey string) error {
	if err := s.redisClient.Del(ctx, s.key(listingKey)).Err(); err != nil {
		return fmt.Errorf("failed to clear checkpoint for %s: %w", listingKey, err)
	}
	return nil
}
