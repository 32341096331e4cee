// Package cache contém o guard de entrega duplicada apoiado no Redis.
package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const deliveryKeyPrefix = "whatsapp:delivery:"

// DeliveryGuard descarta rapidamente reentregas do mesmo evento antes de tocar
// o banco. A unicidade real continua sendo a constraint de message_id.
type DeliveryGuard interface {
	Claim(ctx context.Context, messageID string) (bool, error)
	Release(ctx context.Context, messageID string) error
}

type redisDeliveryGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeliveryGuard(client *redis.Client, ttl time.Duration) DeliveryGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisDeliveryGuard{client: client, ttl: ttl}
}

// NewRedisClient cria o cliente a partir de uma URL redis://
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao interpretar REDIS_URL")
	}
	return redis.NewClient(opts), nil
}

// Claim retorna true quando esta é a primeira entrega observada do messageID
func (g *redisDeliveryGuard) Claim(ctx context.Context, messageID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, deliveryKeyPrefix+messageID, time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "erro ao registrar entrega no redis")
	}
	return ok, nil
}

// Release libera o messageID para que uma nova entrega possa ser processada
func (g *redisDeliveryGuard) Release(ctx context.Context, messageID string) error {
	if err := g.client.Del(ctx, deliveryKeyPrefix+messageID).Err(); err != nil {
		return errors.Wrap(err, "erro ao liberar entrega no redis")
	}
	return nil
}

type noopDeliveryGuard struct{}

// NewNoopDeliveryGuard é usado quando o Redis não está configurado
func NewNoopDeliveryGuard() DeliveryGuard {
	return noopDeliveryGuard{}
}

func (noopDeliveryGuard) Claim(context.Context, string) (bool, error) { return true, nil }

func (noopDeliveryGuard) Release(context.Context, string) error { return nil }
