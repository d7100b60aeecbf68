package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"todo-api/todos/domain"

	"github.com/redis/go-redis/v9"
)

// Valores aceitos por WithStatsBucket.
const (
	BucketMinute = "minute"
	BucketNone   = "none"
)

// RedisStatsStore grava os contadores de requisição em hashes do Redis:
//
//	<prefix>:total               ok|failed
//	<prefix>:minute:<yyyymmddHHMM> ok|failed   (bucket=minute, expira após ttl)
//	<prefix>:route               "<METHOD> <route>:ok|failed"
//	<prefix>:status              "<code>"
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas nos buckets de tempo.
	// total/route/status são cumulativos e não expiram.
	ttl    time.Duration
	bucket string
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "todos:stats",
		ttl:    24 * time.Hour,
		bucket: BucketMinute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "ok"
	if ev.Failed() {
		field = "failed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if s.bucket == BucketMinute {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if route := strings.TrimSpace(ev.Method + " " + ev.Route); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}
	if ev.Status > 0 {
		pipe.HIncrBy(ctx, s.prefix+":status", strconv.Itoa(ev.Status), 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis stats: %w", err)
	}
	return nil
}
