package security

import (
	"context"
	"time"

	"kbadmin/internal/auth/domain/repository"
	"kbadmin/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const denylistKeyPrefix = "auth:denylist:"

// RedisTokenDenylist implements TokenDenylist using Redis keys with a TTL equal
// to the remaining token lifetime, so the set never grows beyond live tokens.
type RedisTokenDenylist struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisTokenDenylist creates a new Redis-backed token denylist
func NewRedisTokenDenylist(client *redis.Client, log logger.Logger) *RedisTokenDenylist {
	return &RedisTokenDenylist{
		client: client,
		logger: log,
	}
}

// Revoke marks a token ID as revoked until its natural expiry.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	err := d.client.Set(ctx, denylistKeyPrefix+jti, "1", ttl).Err()
	if err != nil {
		d.logger.Error("Failed to denylist token",
			zap.String("jti", jti),
			zap.Error(err))
		return err
	}

	d.logger.Debug("Token denylisted",
		zap.String("jti", jti),
		zap.Duration("ttl", ttl))

	return nil
}

// IsRevoked reports whether a token ID is on the denylist.
func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		d.logger.Error("Failed to check token denylist",
			zap.String("jti", jti),
			zap.Error(err))
		return false, err
	}
	return n > 0, nil
}

var _ repository.TokenDenylist = (*RedisTokenDenylist)(nil)
