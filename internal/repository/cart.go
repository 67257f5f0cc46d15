package repository

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/flagforge/store-api/internal/domain/cart"
)

// cartKeyPrefix namespaces cart keys in Redis. The suffix is the
// client-chosen cart identifier.
const cartKeyPrefix = "flagforge:cart:"

// NewRedisClient creates a Redis client for the given address.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

var _ cart.Store = (*RedisCartStore)(nil)

// RedisCartStore implements cart.Store on Redis. Carts are stored as JSON
// under a fixed key per cart ID with no expiry, so a cart survives page
// reloads until it is explicitly cleared.
type RedisCartStore struct {
	rdb *redis.Client
}

// NewRedisCartStore returns a RedisCartStore that uses the given client.
func NewRedisCartStore(rdb *redis.Client) *RedisCartStore {
	return &RedisCartStore{rdb: rdb}
}

// Get loads the cart for id. A missing key yields an empty cart.
func (s *RedisCartStore) Get(ctx context.Context, id string) (*cart.Cart, error) {
	data, err := s.rdb.Get(ctx, cartKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return &cart.Cart{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load cart %s", id)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "decode cart %s", id)
	}
	return &c, nil
}

// Save writes the cart back under id.
func (s *RedisCartStore) Save(ctx context.Context, id string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrapf(err, "encode cart %s", id)
	}
	if err := s.rdb.Set(ctx, cartKeyPrefix+id, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "save cart %s", id)
	}
	return nil
}

// Delete discards the stored cart for id.
func (s *RedisCartStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, cartKeyPrefix+id).Err(); err != nil {
		return errors.Wrapf(err, "delete cart %s", id)
	}
	return nil
}
