package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCheckpoints(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cp := NewRedisCheckpoints(rdb)
	ctx := context.Background()
	key := "category/10/offers?geo_id=213"

	page, err := cp.NextPage(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, page)

	require.NoError(t, cp.SetNextPage(ctx, key, 4))
	page, err = cp.NextPage(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 4, page)

	other, err := cp.NextPage(ctx, "category/10/offers?geo_id=2")
	require.NoError(t, err)
	assert.Zero(t, other)

	require.NoError(t, cp.Clear(ctx, key))
	page, err = cp.NextPage(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, page)
}

func TestRedisCheckpoints_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cp := NewRedisCheckpoints(rdb).(*redisCheckpoints)
	require.NoError(t, mr.Set(cp.key("regions"), "not-a-number"))

	_, err := cp.NextPage(context.Background(), "regions")
	assert.Error(t, err)
}
