// README: Redis client and distributed-lock initialization.
package infra

import (
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewLocker wraps the shared redis client for background jobs that must not
// run concurrently across replicas.
func NewLocker(client *redis.Client) *redislock.Client {
	return redislock.New(client)
}
