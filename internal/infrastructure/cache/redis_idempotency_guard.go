// Package cache implementa la reserva de claves de idempotencia para eventos de consumo.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "labstock:idempotency:"

// RedisIdempotencyGuard reserva claves con SETNX y TTL; compartido entre instancias.
type RedisIdempotencyGuard struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

var _ inventory.IdempotencyGuard = (*RedisIdempotencyGuard)(nil)

// RedisConfig conexión a Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient abre el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisIdempotencyGuard construye el guard sobre un cliente existente.
func NewRedisIdempotencyGuard(client *redis.Client, ttl time.Duration) *RedisIdempotencyGuard {
	return &RedisIdempotencyGuard{client: client, keyPrefix: defaultKeyPrefix, ttl: ttl}
}

func (g *RedisIdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotencia acquire: %w", err)
	}
	return ok, nil
}

func (g *RedisIdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("idempotencia release: %w", err)
	}
	return nil
}

// Close cierra el cliente de Redis.
func (g *RedisIdempotencyGuard) Close() error {
	return g.client.Close()
}
