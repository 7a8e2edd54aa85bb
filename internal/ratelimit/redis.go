package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrScript increments the counter, starts the window on the first hit and
// returns the count with the window's remaining milliseconds.
var incrScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// Redis is a Limiter shared by every server instance using the same Redis.
type Redis struct {
	client *redis.Client
	limit  int
	period time.Duration
	prefix string
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client *redis.Client, limit int, period time.Duration) *Redis {
	return &Redis{
		client: client,
		limit:  limit,
		period: period,
		prefix: "lodge:ratelimit:",
	}
}

// Allow counts a request for key.
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := incrScript.Run(ctx, r.client, []string{r.prefix + key}, r.period.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("counting request in redis: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("counting request in redis: unexpected reply %v", res)
	}

	count, _ := res[0].(int64)
	ttl := r.period
	if ms, ok := res[1].(int64); ok && ms >= 0 {
		ttl = time.Duration(ms) * time.Millisecond
	}
	return decide(count, r.limit, time.Now().Add(ttl)), nil
}

// NewRedisClient connects to addr, which is either host:port or a redis:// URL.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if parsed, err := redis.ParseURL(addr); err == nil {
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
