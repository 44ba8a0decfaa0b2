// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"tablecall/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client, used for webhook deduplication.
	CacheClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client, or nil when Redis is not
// configured. Callers treat a nil client as "dedup disabled".
func GetCacheClient() *redis.Client {
	if CacheClient == nil && config.RedisEnabled() {
		InitCache()
	}
	return CacheClient
}
