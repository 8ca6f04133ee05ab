package config

import (
	"context"
	"log"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis is the shared client, nil when REDIS_URL is unset. Callers that need
// a cross-instance store must fall back to the in-memory implementation when
// this is nil.
var Redis *redis.Client

// InitRedis connects to Redis when REDIS_URL is configured. The service runs
// fine without it on a single instance; the token store just stays local.
func InitRedis() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis ping failed: %v", err)
	}
	Redis = rdb
}
