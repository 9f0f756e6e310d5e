package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"cloudkitchen/internal/redisx"
)

// Store keeps session carts in Redis as JSON blobs. A cart lives only
// for the session; the TTL is refreshed on every save.
type Store struct{ Redis *redis.Client }

func (s *Store) Get(ctx context.Context, cartID string) (*Cart, error) {
	key := fmt.Sprintf(redisx.KeyCart, cartID)
	b, err := s.Redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

func (s *Store) Save(ctx context.Context, cartID string, c *Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	key := fmt.Sprintf(redisx.KeyCart, cartID)
	return s.Redis.Set(ctx, key, b, redisx.TTLCart).Err()
}

func (s *Store) Delete(ctx context.Context, cartID string) error {
	key := fmt.Sprintf(redisx.KeyCart, cartID)
	return s.Redis.Del(ctx, key).Err()
}
