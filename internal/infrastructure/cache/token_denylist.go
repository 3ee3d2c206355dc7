package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RevokedTokenKeyPrefix is shared with the identity service, which writes the
// entries on logout with a TTL matching the token's remaining lifetime.
const RevokedTokenKeyPrefix = "revoked_token:"

type TokenDenyList struct {
	client *redis.Client
}

func NewTokenDenyList(client *redis.Client) *TokenDenyList {
	return &TokenDenyList{client: client}
}

func (d *TokenDenyList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, RevokedTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
