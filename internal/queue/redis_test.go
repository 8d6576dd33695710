package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torgmailru/client/internal/domain/task"
)

const noBlock = -1

func setupQueue(t *testing.T) (*miniredis.Miniredis, *RedisQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	q, err := NewRedisQueue(context.Background(), rdb, "test:stream:", "crawlers")
	require.NoError(t, err)
	return mr, q
}

func TestNewRedisQueue_CreatesStreams(t *testing.T) {
	mr, q := setupQueue(t)

	assert.True(t, mr.Exists("test:stream:ListingTask"))
	assert.True(t, mr.Exists("test:stream:ListingRetryTask"))

	// a second call finds the groups already there
	require.NoError(t, q.EnsureStreamsExist(context.Background()))
}

func TestRedisQueue_AddGetAck(t *testing.T) {
	_, q := setupQueue(t)
	ctx := context.Background()

	id, err := q.AddTask(ctx, &task.ListingTask{Resource: "regions", Params: map[string]string{"results_per_page": "30"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msg, err := q.GetTask(ctx, "worker-1", task.TypeListing, noBlock)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, task.TypeListing, msg.Values["task_type"])

	decoded, err := task.UnmarshalTask[*task.ListingTask]([]byte(msg.Values["task_data"].(string)))
	require.NoError(t, err)
	assert.Equal(t, "regions", decoded.Resource)
	assert.Equal(t, "30", decoded.Params["results_per_page"])

	require.NoError(t, q.AckTask(ctx, task.TypeListing, msg.ID))

	msg, err = q.GetTask(ctx, "worker-1", task.TypeListing, noBlock)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestRedisQueue_SeparateStreams(t *testing.T) {
	_, q := setupQueue(t)
	ctx := context.Background()

	_, err := q.AddTask(ctx, &task.ListingRetryTask{Resource: "search", Attempt: 1})
	require.NoError(t, err)

	msg, err := q.GetTask(ctx, "worker-1", task.TypeListing, noBlock)
	require.NoError(t, err)
	assert.Nil(t, msg)

	msg, err = q.GetTask(ctx, "worker-1", task.TypeListingRetry, noBlock)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, task.TypeListingRetry, msg.Values["task_type"])
}

func TestRedisQueue_AutoClaim(t *testing.T) {
	_, q := setupQueue(t)
	ctx := context.Background()

	_, err := q.AddTask(ctx, &task.ListingTask{Resource: "vendor"})
	require.NoError(t, err)

	msg, err := q.GetTask(ctx, "crashed-worker", task.TypeListing, noBlock)
	require.NoError(t, err)
	require.NotNil(t, msg)

	claimed, err := q.AutoClaim(ctx, "rescuer", task.TypeListing, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, msg.ID, claimed[0].ID)

	require.NoError(t, q.AckTask(ctx, task.TypeListing, msg.ID))
	claimed, err = q.AutoClaim(ctx, "rescuer", task.TypeListing, 0)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestRedisQueue_GetTaskBlocksUntilTimeout(t *testing.T) {
	_, q := setupQueue(t)

	start := time.Now()
	msg, err := q.GetTask(context.Background(), "worker-1", task.TypeListing, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
