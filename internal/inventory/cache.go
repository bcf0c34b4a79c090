package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/config"
	"github.com/iliyamo/venue-box-office/internal/model"
)

// emptyMarker is stored in every cached set so that a showing with no
// bookings is distinguishable from a cache miss.
const emptyMarker = "-"

// RedisCache caches booked-seat sets per showing in Redis.  It wraps
// another lookup and falls through to it on a miss or on any Redis
// error.  With a nil client or a disabled config it is a plain proxy.
type RedisCache struct {
	next BookedSeatLookup
	rdb  *redis.Client
	cfg  config.AvailabilityCacheConfig
	log  logrus.FieldLogger
}

// NewRedisCache wraps next with a Redis-backed cache.
func NewRedisCache(next BookedSeatLookup, rdb *redis.Client, cfg config.AvailabilityCacheConfig, log logrus.FieldLogger) *RedisCache {
	return &RedisCache{next: next, rdb: rdb, cfg: cfg, log: log.WithField("component", "availability-cache")}
}

func (c *RedisCache) enabled() bool { return c.rdb != nil && c.cfg.Enabled }

// Key returns the Redis key of a showing.
func (c *RedisCache) Key(eventID string, date time.Time, showTime string) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.cfg.Prefix, eventID, date.Format("2006-01-02"), showTime)
}

// BookedSeats implements BookedSeatLookup.
func (c *RedisCache) BookedSeats(ctx context.Context, eventID string, date time.Time, showTime string) ([]model.SeatID, error) {
	if !c.enabled() {
		return c.next.BookedSeats(ctx, eventID, date, showTime)
	}
	key := c.Key(eventID, date, showTime)
	members, err := c.rdb.SMembers(ctx, key).Result()
	if err == nil && len(members) > 0 {
		out := make([]model.SeatID, 0, len(members)-1)
		for _, m := range members {
			if m != emptyMarker {
				out = append(out, model.SeatID(m))
			}
		}
		return out, nil
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Debug("cache read failed")
	}

	ids, err := c.next.BookedSeats(ctx, eventID, date, showTime)
	if err != nil {
		return nil, err
	}
	vals := make([]interface{}, 0, len(ids)+1)
	vals = append(vals, emptyMarker)
	for _, id := range ids {
		vals = append(vals, string(id))
	}
	_, perr := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.SAdd(ctx, key, vals...)
		p.Expire(ctx, key, c.cfg.TTL)
		return nil
	})
	if perr != nil {
		c.log.WithError(perr).WithField("key", key).Warn("cache write failed")
	}
	return ids, nil
}

// Invalidate drops the cached set of a showing.  Commits and refunds
// call it after their transaction is durable.
func (c *RedisCache) Invalidate(ctx context.Context, eventID string, date time.Time, showTime string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Del(ctx, c.Key(eventID, date, showTime)).Err()
}
