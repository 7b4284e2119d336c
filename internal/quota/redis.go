// Package quota provides a Redis backed weekly introduction counter, used in
// place of the rate_limits table when REDIS_ADDR is configured.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Helmus101/confluence/internal/repository"
)

// retention keeps a week's counter for one extra day past the week boundary.
const retention = 8 * 24 * time.Hour

// RedisQuota implements repository.WeeklyQuota with INCR on per-week keys.
type RedisQuota struct {
	client redis.Cmdable
	prefix string
}

var _ repository.WeeklyQuota = (*RedisQuota)(nil)

// NewRedisQuota wires a quota on the given client. prefix namespaces keys.
func NewRedisQuota(client redis.Cmdable, prefix string) *RedisQuota {
	if prefix == "" {
		prefix = "confluence"
	}
	return &RedisQuota{client: client, prefix: prefix}
}

func (q *RedisQuota) key(userID uuid.UUID, weekStart time.Time) string {
	return fmt.Sprintf("%s:intro-quota:%s:%d", q.prefix, userID, weekStart.Unix())
}

// Count returns the number of requests recorded for the week.
func (q *RedisQuota) Count(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	n, err := q.client.Get(ctx, q.key(userID, weekStart)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read weekly quota: %w", err)
	}
	return n, nil
}

// Increment bumps the weekly counter atomically and sets its expiry.
func (q *RedisQuota) Increment(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error) {
	key := q.key(userID, weekStart)

	var incr *redis.IntCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, weekStart.Add(retention))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment weekly quota: %w", err)
	}
	return int(incr.Val()), nil
}
