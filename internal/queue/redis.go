package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"torgmailru/client/internal/domain/task"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const DefaultStreamPrefix = "torgmailru:stream:"

// TaskTypes are the streams the crawler reads from
var TaskTypes = []string{task.TypeListing, task.TypeListingRetry}

type Queue interface {
	AddTask(ctx context.Context, t task.Task) (string, error) // Returns message ID
	GetTask(ctx context.Context, consumer, taskType string, block time.Duration) (*redis.XMessage, error)
	AckTask(ctx context.Context, taskType, msgID string) error
	AutoClaim(ctx context.Context, consumer, taskType string, minIdleTime time.Duration) ([]redis.XMessage, error)
	EnsureStreamsExist(ctx context.Context) error
}

type RedisQueue struct {
	redisClient  *redis.Client
	streamPrefix string
	groupName    string
}

// NewRedisQueue creates the queue and makes sure every task stream has the
// consumer group before any worker starts reading.
func NewRedisQueue(ctx context.Context, redisClient *redis.Client, streamPrefix, groupName string) (*RedisQueue, error) {
	if streamPrefix == "" {
		streamPrefix = DefaultStreamPrefix
	}
	q := &RedisQueue{
		redisClient:  redisClient,
		streamPrefix: streamPrefix,
		groupName:    groupName,
	}

	if err := q.EnsureStreamsExist(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure streams exist: %w", err)
	}

	return q, nil
}

func (q *RedisQueue) stream(taskType string) string {
	return task.StreamName(q.streamPrefix, taskType)
}

func (q *RedisQueue) createGroup(ctx context.Context, stream string) error {
	err := q.redisClient.XGroupCreateMkStream(ctx, stream, q.groupName, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Debugf("Group %s already exists for stream %s", q.groupName, stream)
		return nil
	}
	return err
}

func (q *RedisQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	streamName := q.stream(t.TaskType())

	taskValue, err := t.TaskValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"task_type": t.TaskType(),
			"task_data": string(taskValue),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add task to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Added task %s to stream %s with message ID: %s", t.TaskType(), streamName, messageID)
	return messageID, nil
}

// GetTask reads one new message for consumer, waiting up to block. It returns
// nil without error when nothing arrived.
func (q *RedisQueue) GetTask(ctx context.Context, consumer, taskType string, block time.Duration) (*redis.XMessage, error) {
	stream := q.stream(taskType)
	result, err := q.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from Redis stream %s: %w", stream, err)
	}

	if len(result) == 0 || len(result[0].Messages) == 0 {
		return nil, nil
	}

	return &result[0].Messages[0], nil
}

func (q *RedisQueue) AckTask(ctx context.Context, taskType, msgID string) error {
	return q.redisClient.XAck(ctx, q.stream(taskType), q.groupName, msgID).Err()
}

// AutoClaim takes over messages another consumer left pending longer than minIdleTime
func (q *RedisQueue) AutoClaim(ctx context.Context, consumer, taskType string, minIdleTime time.Duration) ([]redis.XMessage, error) {
	stream := q.stream(taskType)
	result, _, err := q.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    q.groupName,
		Consumer: consumer,
		MinIdle:  minIdleTime,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to claim messages from Redis stream %s: %w", stream, err)
	}

	return result, nil
}

// EnsureStreamsExist creates all required streams and consumer groups upfront
func (q *RedisQueue) EnsureStreamsExist(ctx context.Context) error {
	for _, taskType := range TaskTypes {
		streamName := q.stream(taskType)
		if err := q.createGroup(ctx, streamName); err != nil {
			return fmt.Errorf("failed to create consumer group for %s: %w", taskType, err)
		}
		log.Debugf("✅ Stream %s and consumer group %s ready", streamName, q.groupName)
	}
	return nil
}
