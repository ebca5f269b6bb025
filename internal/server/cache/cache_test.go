package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = value
	return nil
}

func (m mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

func (m mapCache) DeleteByPattern(context.Context, string) error { return nil }

func TestJSONHelpers_RoundTrip(t *testing.T) {
	c := mapCache{}
	ctx := context.Background()

	type item struct {
		Name  string `json:"name"`
		Stock int    `json:"stock"`
	}

	require.NoError(t, SetJSON(ctx, c, "k", []item{{"Keyboard", 3}}, time.Second))
	assert.JSONEq(t, `[{"name":"Keyboard","stock":3}]`, string(c["k"]))

	var got []item
	require.NoError(t, GetJSON(ctx, c, "k", &got))
	assert.Equal(t, []item{{"Keyboard", 3}}, got)

	assert.ErrorIs(t, GetJSON(ctx, c, "missing", &got), ErrCacheMiss)
}

func TestSetJSON_UnmarshalableValue(t *testing.T) {
	err := SetJSON(context.Background(), mapCache{}, "k", make(chan int), time.Second)
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeleteByPattern(ctx, "*"))
}

func TestNewRedisCache_PingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestRedisCache_ErrorsAreNotMisses(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))
	assert.NoError(t, c.Delete(context.Background()))
}
