// Package redisdb implementa el guard rápido de idempotencia para ingesta de
// webhooks sobre Redis. Es un camino de optimización: la garantía real de
// deduplicación es el constraint único (platform, external_id) en PostgreSQL.
package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcastellr/bodega-api/internal/application/orders"
	"github.com/jcastellr/bodega-api/pkg/config"
)

var _ orders.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore reserva claves de deduplicación vía SET NX con TTL.
type IdempotencyStore struct {
	client *redis.Client
}

// NewClient crea el cliente Redis y verifica conectividad.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewIdempotencyStore construye el store sobre un cliente existente.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve intenta reservar la clave. Devuelve true si este caller la reservó
// (primera vez) y false si ya estaba reservada (duplicado dentro del TTL).
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}
