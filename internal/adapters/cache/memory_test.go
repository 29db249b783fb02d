package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func result(addr string, tier domain.Tier) domain.EligibilityResult {
	return domain.EligibilityResult{Address: addr, Status: domain.StatusOK, Tier: tier}
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)

	_, ok := c.Get(ctx, "0xabc")
	assert.False(t, ok)

	c.Set(ctx, "0xabc", result("0xabc", domain.TierB))
	got, ok := c.Get(ctx, "0xabc")
	require.True(t, ok)
	assert.Equal(t, domain.TierB, got.Tier)
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(5 * time.Minute).WithClock(clock.now)

	c.Set(ctx, "0xabc", result("0xabc", domain.TierA))

	clock.advance(4 * time.Minute)
	_, ok := c.Get(ctx, "0xabc")
	assert.True(t, ok)

	clock.advance(time.Minute)
	_, ok = c.Get(ctx, "0xabc")
	assert.False(t, ok, "la entrada expira exactamente al cumplir el TTL")
	assert.Equal(t, 0, c.Len(), "la lectura de una entrada expirada la elimina")
}

func TestMemory_SetRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(time.Minute).WithClock(clock.now)

	c.Set(ctx, "0xabc", result("0xabc", domain.TierC))
	clock.advance(50 * time.Second)
	c.Set(ctx, "0xabc", result("0xabc", domain.TierS))
	clock.advance(50 * time.Second)

	got, ok := c.Get(ctx, "0xabc")
	require.True(t, ok)
	assert.Equal(t, domain.TierS, got.Tier)
}

func TestMemory_Prune(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(time.Minute).WithClock(clock.now)

	c.Set(ctx, "old1", result("old1", domain.TierNone))
	c.Set(ctx, "old2", result("old2", domain.TierNone))
	clock.advance(2 * time.Minute)
	c.Set(ctx, "fresh", result("fresh", domain.TierA))

	assert.Equal(t, 2, c.Prune())
	assert.Equal(t, 1, c.Len())
}

func TestMemory_NoTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(0).WithClock(clock.now)

	c.Set(ctx, "0xabc", result("0xabc", domain.TierA))
	clock.advance(24 * 365 * time.Hour)

	_, ok := c.Get(ctx, "0xabc")
	assert.True(t, ok)
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := fmt.Sprintf("0x%02d", i%4)
			for j := 0; j < 200; j++ {
				c.Set(ctx, addr, result(addr, domain.TierC))
				c.Get(ctx, addr)
			}
			c.Prune()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
}
