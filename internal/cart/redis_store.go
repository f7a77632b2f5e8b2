package cart

import (
	"context"
	"time"

	pkgredis "github.com/freshbowl/storefront/pkg/redis"
)

type snapshotKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartSnapshotKey(cartID string) string
}

// RedisStore mirrors snapshots to redis with a sliding TTL so abandoned carts
// eventually expire.
type RedisStore struct {
	kv  snapshotKV
	ttl time.Duration
}

// NewRedisStore binds the store to a redis client. ttl <= 0 keeps snapshots forever.
func NewRedisStore(kv snapshotKV, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, cartID string) ([]byte, error) {
	key := s.kv.CartSnapshotKey(cartID)
	raw, err := s.kv.Get(ctx, key)
	if pkgredis.IsNil(err) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.kv.Touch(ctx, key, s.ttl); err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (s *RedisStore) Save(ctx context.Context, cartID string, snapshot []byte) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.kv.Set(ctx, s.kv.CartSnapshotKey(cartID), string(snapshot), ttl)
}

func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	return s.kv.Del(ctx, s.kv.CartSnapshotKey(cartID))
}
