package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

const keyPrefix = "polydrop:result:"

// Redis guarda los resultados como JSON en Redis, compartidos entre procesos.
// Un error de Redis se trata como miss: el resultado se recalcula.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis crea un cache sobre un cliente ya configurado.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, address string) (domain.EligibilityResult, bool) {
	data, err := r.rdb.Get(ctx, resultKey(address)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis cache read failed", "address", address, "err", err)
		}
		return domain.EligibilityResult{}, false
	}

	var result domain.EligibilityResult
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("redis cache entry corrupt", "address", address, "err", err)
		return domain.EligibilityResult{}, false
	}
	return result, true
}

func (r *Redis) Set(ctx context.Context, address string, result domain.EligibilityResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, resultKey(address), data, r.ttl).Err(); err != nil {
		slog.Warn("redis cache write failed", "address", address, "err", err)
	}
}

func resultKey(address string) string {
	return keyPrefix + address
}
