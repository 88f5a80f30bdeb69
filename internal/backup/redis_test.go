package backup

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, CartKey, []byte(`[{"_id":"p1","quantity":2}]`)))

	stored, err := mr.Get("storefront:cartBackup")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":"p1","quantity":2}]`, stored)

	got, err := store.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":"p1","quantity":2}]`, string(got))
}

func TestRedisStore_NoExpiry(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Set(context.Background(), CartKey, []byte("[]")))

	assert.Zero(t, mr.TTL("storefront:cartBackup"))
}

func TestRedisStore_Overwrite(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, CartKey, []byte("first")))
	require.NoError(t, store.Set(ctx, CartKey, []byte("second")))

	got, err := store.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	got, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, got)
}

func TestRedisStore_Remove(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("storefront:cartBackup", "[]"))
	require.NoError(t, store.Remove(ctx, CartKey))
	assert.False(t, mr.Exists("storefront:cartBackup"))

	// removing twice is fine
	assert.NoError(t, store.Remove(ctx, CartKey))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), CartKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "redis get failed")
}
