package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks processed broker messages in Redis so consumers can skip
// duplicates delivered by the at-least-once substrate. An entry expires after
// the TTL; redelivery later than that is caught by the consumer's own natural
// keys (bill per booking id, reminder per (booking id, type)).
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("dedup:%s:%d:%d", topic, partition, offset)
}

// Acquire marks the key as being processed. It returns false when another
// delivery of the same message already claimed it.
func (s *Store) Acquire(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
}

// Release drops the claim so a redelivery can retry after a processing
// failure.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
