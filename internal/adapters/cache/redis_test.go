package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedis(rdb, ttl), mr
}

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, time.Minute)

	want := domain.Evaluate("0xabc", domain.TraderMetrics{
		TotalVolume:   12_500.5,
		PnL:           -40.25,
		ActiveDays:    9,
		UniqueMarkets: 4,
		TotalTrades:   60,
		Consistency:   0.3,
		AvgTradeSize:  208.34,
	}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	_, ok := c.Get(ctx, "0xabc")
	assert.False(t, ok)

	c.Set(ctx, "0xabc", want)
	assert.True(t, mr.Exists("polydrop:result:0xabc"))

	got, ok := c.Get(ctx, "0xabc")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, 5*time.Minute)

	c.Set(ctx, "0xabc", result("0xabc", domain.TierA))
	assert.Equal(t, 5*time.Minute, mr.TTL("polydrop:result:0xabc"))

	mr.FastForward(4 * time.Minute)
	_, ok := c.Get(ctx, "0xabc")
	assert.True(t, ok)

	mr.FastForward(time.Minute)
	_, ok = c.Get(ctx, "0xabc")
	assert.False(t, ok)
}

func TestRedis_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, time.Minute)

	require.NoError(t, mr.Set("polydrop:result:0xabc", "{not json"))
	_, ok := c.Get(ctx, "0xabc")
	assert.False(t, ok)
}

func TestRedis_UnreachableIsMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := NewRedis(rdb, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "0xabc", result("0xabc", domain.TierA))
	_, ok := c.Get(ctx, "0xabc")
	assert.False(t, ok)
}

func TestResultKey(t *testing.T) {
	assert.Equal(t, "polydrop:result:0xabc", resultKey("0xabc"))
}
